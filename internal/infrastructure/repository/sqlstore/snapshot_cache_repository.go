package sqlstore

import (
	"context"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/live-sports-hub/internal/domain/match"
	"github.com/riskibarqy/live-sports-hub/internal/platform/logging"
	qb "github.com/riskibarqy/live-sports-hub/internal/platform/querybuilder"
	"github.com/riskibarqy/live-sports-hub/internal/usecase"
)

// SnapshotCacheRepository is the persistent snapshot cache. Reads fail open.
type SnapshotCacheRepository struct {
	db     *sqlx.DB
	now    func() time.Time
	logger *logging.Logger
}

func NewSnapshotCacheRepository(db *sqlx.DB, now func() time.Time, logger *logging.Logger) *SnapshotCacheRepository {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SnapshotCacheRepository{db: db, now: now, logger: logger}
}

func (r *SnapshotCacheRepository) Get(ctx context.Context, key string, maxAge time.Duration) (match.Snapshot, bool) {
	query, args, err := qb.Select("cache_key", "payload", "written_at_ms").From("snapshot_cache").
		Where(qb.Eq("cache_key", key)).
		ToSQL()
	if err != nil {
		r.logger.WarnContext(ctx, "build get snapshot cache query failed", "error", err)
		return match.Snapshot{}, false
	}

	var row snapshotCacheTableModel
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(query), args...); err != nil {
		if !isNotFound(err) {
			r.logger.WarnContext(ctx, "snapshot cache lookup failed", "cache_key", key, "error", usecase.NewCacheReadError(key, err))
		}
		return match.Snapshot{}, false
	}

	writtenAt := time.UnixMilli(row.WrittenAtMS)
	if maxAge > 0 && r.now().Sub(writtenAt) >= maxAge {
		return match.Snapshot{}, false
	}

	var snapshot match.Snapshot
	if err := sonic.UnmarshalString(row.Payload, &snapshot); err != nil {
		r.logger.WarnContext(ctx, "snapshot cache entry unreadable", "cache_key", key, "error", usecase.NewCacheReadError(key, err))
		return match.Snapshot{}, false
	}
	return snapshot, true
}

// Put upserts by key. A row written later than this call is left alone.
func (r *SnapshotCacheRepository) Put(ctx context.Context, key string, snapshot match.Snapshot) error {
	payload, err := sonic.MarshalString(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot cache_key=%s: %w", key, err)
	}

	model := snapshotCacheTableModel{
		CacheKey:    key,
		Payload:     payload,
		WrittenAtMS: r.now().UTC().UnixMilli(),
	}
	query, args, err := qb.InsertModel("snapshot_cache", model, `ON CONFLICT (cache_key) DO UPDATE SET
    payload = EXCLUDED.payload,
    written_at_ms = EXCLUDED.written_at_ms
WHERE snapshot_cache.written_at_ms <= EXCLUDED.written_at_ms`)
	if err != nil {
		return fmt.Errorf("build upsert snapshot cache query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("upsert snapshot cache_key=%s: %w", key, err)
	}
	return nil
}
