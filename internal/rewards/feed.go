package rewards

import (
	"context"
	"log"
	"sync"
	"time"
)

type subscriber struct {
	userID string
	ch     chan int
}

// Feed pushes balance changes to subscribers. It polls the profile store for
// users with at least one live subscription; an unwatched user costs nothing.
type Feed struct {
	store    PointsReader
	interval time.Duration

	mu        sync.Mutex
	subs      map[int]*subscriber
	nextSubID int
	last      map[string]int
}

func NewFeed(store PointsReader, interval time.Duration) *Feed {
	return &Feed{
		store:    store,
		interval: interval,
		subs:     make(map[int]*subscriber),
		last:     make(map[string]int),
	}
}

func (f *Feed) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			f.poll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Subscribe registers interest in a user's balance. The current balance is
// delivered on the first poll after subscribing. The returned func must be
// called to release the subscription; it is safe to call twice.
func (f *Feed) Subscribe(userID string) (<-chan int, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextSubID
	f.nextSubID++

	sub := &subscriber{userID: userID, ch: make(chan int, 1)}
	f.subs[id] = sub

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.subs, id)
			close(sub.ch)
		})
	}

	return sub.ch, unsubscribe
}

func (f *Feed) poll(ctx context.Context) {
	for _, userID := range f.watchedUsers() {
		points, err := f.store.GetPoints(ctx, userID)
		if err != nil {
			log.Printf("feed: get points for %s: %v", userID, err)
			continue
		}
		f.publish(userID, points)
	}
}

func (f *Feed) watchedUsers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	seen := make(map[string]struct{})
	var users []string
	for _, sub := range f.subs {
		if _, ok := seen[sub.userID]; ok {
			continue
		}
		seen[sub.userID] = struct{}{}
		users = append(users, sub.userID)
	}

	// Drop change tracking for users nobody watches anymore.
	for userID := range f.last {
		if _, ok := seen[userID]; !ok {
			delete(f.last, userID)
		}
	}

	return users
}

func (f *Feed) publish(userID string, points int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if prev, ok := f.last[userID]; ok && prev == points {
		return
	}
	f.last[userID] = points

	for _, sub := range f.subs {
		if sub.userID != userID {
			continue
		}
		// A slow subscriber keeps only the freshest balance.
		select {
		case sub.ch <- points:
		default:
			select {
			case <-sub.ch:
			default:
			}
			sub.ch <- points
		}
	}
}
