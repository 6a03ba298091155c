package match

import (
	"context"
	"time"
)

// SnapshotCache stores the latest snapshot per cache key.
// Get reports a miss for expired or unreadable entries instead of failing.
type SnapshotCache interface {
	Get(ctx context.Context, key string, maxAge time.Duration) (Snapshot, bool)
	Put(ctx context.Context, key string, snapshot Snapshot) error
}
