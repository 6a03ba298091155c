package memory

import (
	"context"
	"time"

	"github.com/riskibarqy/live-sports-hub/internal/domain/match"
	"github.com/riskibarqy/live-sports-hub/internal/platform/cache"
)

// SnapshotCache keeps snapshots in process memory. Entries live until the
// process exits; freshness is judged per read.
type SnapshotCache struct {
	store *cache.Store[match.Snapshot]
}

func NewSnapshotCache(now func() time.Time) *SnapshotCache {
	return &SnapshotCache{store: cache.NewStore[match.Snapshot](now)}
}

func (c *SnapshotCache) Get(_ context.Context, key string, maxAge time.Duration) (match.Snapshot, bool) {
	snapshot, _, ok := c.store.Get(key, maxAge)
	if !ok {
		return match.Snapshot{}, false
	}
	return snapshot.Clone(), true
}

func (c *SnapshotCache) Put(_ context.Context, key string, snapshot match.Snapshot) error {
	c.store.Set(key, snapshot.Clone())
	return nil
}
