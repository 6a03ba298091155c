package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	writtenAt time.Time
}

// Store keeps values with their write time. Freshness is decided by the
// reader's maxAge, so entries are never evicted on their own.
type Store[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	now     func() time.Time
}

func NewStore[V any](now func() time.Time) *Store[V] {
	if now == nil {
		now = time.Now
	}
	return &Store[V]{
		entries: make(map[string]entry[V]),
		now:     now,
	}
}

// Get returns the value for key when it was written less than maxAge ago.
// A non-positive maxAge disables the age check.
func (s *Store[V]) Get(key string, maxAge time.Duration) (V, time.Time, bool) {
	var zero V
	if key == "" {
		return zero, time.Time{}, false
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return zero, time.Time{}, false
	}
	if maxAge > 0 && s.now().Sub(e.writtenAt) >= maxAge {
		return zero, e.writtenAt, false
	}

	return e.value, e.writtenAt, true
}

func (s *Store[V]) Set(key string, value V) time.Time {
	writtenAt := s.now()
	s.SetAt(key, value, writtenAt)
	return writtenAt
}

// SetAt stores value unless the existing entry was written later.
func (s *Store[V]) SetAt(key string, value V, writtenAt time.Time) bool {
	if key == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.entries[key]; ok && current.writtenAt.After(writtenAt) {
		return false
	}
	s.entries[key] = entry[V]{
		value:     value,
		writtenAt: writtenAt,
	}
	return true
}

func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
