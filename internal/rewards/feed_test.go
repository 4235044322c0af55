package rewards

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_DeliversInitialBalance(t *testing.T) {
	store := newMockStore()
	store.points["user-1"] = 150
	feed := NewFeed(store, time.Hour)

	ch, unsubscribe := feed.Subscribe("user-1")
	defer unsubscribe()

	feed.poll(context.Background())

	select {
	case points := <-ch:
		assert.Equal(t, 150, points)
	default:
		t.Fatal("expected initial balance on channel")
	}
}

func TestFeed_BroadcastsOnlyOnChange(t *testing.T) {
	store := newMockStore()
	store.points["user-1"] = 150
	feed := NewFeed(store, time.Hour)

	ch, unsubscribe := feed.Subscribe("user-1")
	defer unsubscribe()

	feed.poll(context.Background())
	<-ch

	// Unchanged balance stays silent.
	feed.poll(context.Background())
	select {
	case points := <-ch:
		t.Fatalf("unexpected delivery: %d", points)
	default:
	}

	store.m.Lock()
	store.points["user-1"] = 200
	store.m.Unlock()

	feed.poll(context.Background())
	select {
	case points := <-ch:
		assert.Equal(t, 200, points)
	default:
		t.Fatal("expected updated balance on channel")
	}
}

func TestFeed_SlowSubscriberKeepsFreshest(t *testing.T) {
	store := newMockStore()
	store.points["user-1"] = 100
	feed := NewFeed(store, time.Hour)

	ch, unsubscribe := feed.Subscribe("user-1")
	defer unsubscribe()

	// Two polls without a read; only the latest balance survives.
	feed.poll(context.Background())
	store.m.Lock()
	store.points["user-1"] = 300
	store.m.Unlock()
	feed.poll(context.Background())

	points := <-ch
	assert.Equal(t, 300, points)
	select {
	case stale := <-ch:
		t.Fatalf("unexpected stale delivery: %d", stale)
	default:
	}
}

func TestFeed_UnsubscribeClosesChannel(t *testing.T) {
	store := newMockStore()
	feed := NewFeed(store, time.Hour)

	ch, unsubscribe := feed.Subscribe("user-1")
	unsubscribe()
	unsubscribe() // safe to call twice

	_, open := <-ch
	assert.False(t, open)

	// Polling after unsubscribe must not touch the closed channel.
	feed.poll(context.Background())
}

func TestFeed_TracksOnlyWatchedUsers(t *testing.T) {
	store := newMockStore()
	store.points["user-1"] = 10
	store.points["user-2"] = 20
	feed := NewFeed(store, time.Hour)

	ch1, unsub1 := feed.Subscribe("user-1")
	ch2, unsub2 := feed.Subscribe("user-2")
	defer unsub2()

	feed.poll(context.Background())
	require.Equal(t, 10, <-ch1)
	require.Equal(t, 20, <-ch2)

	unsub1()
	feed.poll(context.Background())

	feed.mu.Lock()
	_, tracked := feed.last["user-1"]
	feed.mu.Unlock()
	assert.False(t, tracked, "dropped subscriber should not be tracked")
}

func TestFeed_RunStopsOnCancel(t *testing.T) {
	store := newMockStore()
	feed := NewFeed(store, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		feed.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("feed did not stop on context cancel")
	}
}
