package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/live-sports-hub/internal/domain/favorite"
)

type FavoriteRepository struct {
	mu    sync.RWMutex
	items map[string]favorite.Favorite
	now   func() time.Time
}

func NewFavoriteRepository(now func() time.Time) *FavoriteRepository {
	if now == nil {
		now = time.Now
	}
	return &FavoriteRepository{items: make(map[string]favorite.Favorite), now: now}
}

func (r *FavoriteRepository) Add(_ context.Context, item favorite.Favorite) error {
	item.EventID = strings.TrimSpace(item.EventID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.EventID]; ok {
		return nil
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = r.now()
	}
	item.AddedAt = item.AddedAt.UTC().Truncate(time.Millisecond)
	r.items[item.EventID] = item
	return nil
}

func (r *FavoriteRepository) Remove(_ context.Context, eventID string) error {
	r.mu.Lock()
	delete(r.items, strings.TrimSpace(eventID))
	r.mu.Unlock()
	return nil
}

func (r *FavoriteRepository) List(_ context.Context) ([]favorite.Favorite, error) {
	r.mu.RLock()
	out := make([]favorite.Favorite, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].AddedAt.After(out[j].AddedAt)
		}
		return out[i].EventID < out[j].EventID
	})
	return out, nil
}

func (r *FavoriteRepository) Exists(_ context.Context, eventID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.items[strings.TrimSpace(eventID)]
	return ok, nil
}
