package cache

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestStore_FreshnessBoundary(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)}
	store := NewStore[string](clock.Now)
	store.Set("events_Soccer_all_2026-03-14", "payload")

	clock.Advance(59 * time.Second)
	if _, _, ok := store.Get("events_Soccer_all_2026-03-14", time.Minute); !ok {
		t.Fatalf("expected entry to be fresh at 59s")
	}

	clock.Advance(time.Second)
	if _, _, ok := store.Get("events_Soccer_all_2026-03-14", time.Minute); ok {
		t.Fatalf("expected entry to be stale at exactly maxAge")
	}

	if store.Len() != 1 {
		t.Fatalf("stale entries must not be evicted, len=%d", store.Len())
	}
}

func TestStore_SetAtKeepsNewestWrite(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	store := NewStore[string](func() time.Time { return base.Add(time.Second) })

	if !store.SetAt("k", "newer", base.Add(500*time.Millisecond)) {
		t.Fatalf("expected first write to succeed")
	}
	if store.SetAt("k", "older", base) {
		t.Fatalf("expected older write to be rejected")
	}

	got, writtenAt, ok := store.Get("k", time.Minute)
	if !ok || got != "newer" {
		t.Fatalf("expected newer value, got %q ok=%v", got, ok)
	}
	if !writtenAt.Equal(base.Add(500 * time.Millisecond)) {
		t.Fatalf("unexpected write time: %s", writtenAt)
	}
}

func TestStore_EmptyKeyIgnored(t *testing.T) {
	t.Parallel()

	store := NewStore[int](nil)
	store.Set("", 1)
	if _, _, ok := store.Get("", 0); ok {
		t.Fatalf("empty key must never hit")
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, len=%d", store.Len())
	}
}
