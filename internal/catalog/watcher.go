package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/sopissedoff/my-restaurant-app-online/internal/domain"
)

// Snapshot is the full, ordered menu at one point in time. Subscribers
// always receive complete snapshots, never diffs.
type Snapshot []*domain.MenuItem

// Watcher polls the catalog and broadcasts a fresh snapshot to every
// subscriber whenever the menu changes.
type Watcher struct {
	repo     Repository
	interval time.Duration

	mu          sync.RWMutex
	current     Snapshot
	fingerprint []byte
	subs        map[int]chan Snapshot
	nextSubID   int
}

func NewWatcher(repo Repository, interval time.Duration) *Watcher {
	return &Watcher{
		repo:     repo,
		interval: interval,
		subs:     make(map[int]chan Snapshot),
	}
}

// Run polls until ctx is cancelled. An initial load happens immediately so
// Current is usable as soon as Run has ticked once.
func (w *Watcher) Run(ctx context.Context) {
	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.refresh(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Current returns the most recent snapshot (nil before the first load).
func (w *Watcher) Current() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Subscribe registers for snapshot updates. The returned func detaches the
// subscriber and closes its channel; it is safe to call more than once.
func (w *Watcher) Subscribe() (<-chan Snapshot, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextSubID
	w.nextSubID++
	ch := make(chan Snapshot, 1)
	w.subs[id] = ch

	if w.current != nil {
		ch <- w.current
	}

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			delete(w.subs, id)
			close(ch)
		})
	}
	return ch, unsubscribe
}

func (w *Watcher) refresh(ctx context.Context) {
	items, err := w.repo.GetAllItems(ctx)
	if err != nil {
		log.Printf("catalog refresh failed: %v", err)
		return
	}

	fingerprint, err := json.Marshal(items)
	if err != nil {
		log.Printf("catalog fingerprint failed: %v", err)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if bytes.Equal(fingerprint, w.fingerprint) {
		return
	}
	w.current = items
	w.fingerprint = fingerprint

	for _, ch := range w.subs {
		select {
		case ch <- items:
		default:
			// Slow subscriber: drop the stale snapshot and leave the fresh
			// one in the buffer.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- items:
			default:
			}
		}
	}
}
