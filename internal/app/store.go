package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/live-sports-hub/internal/config"
	"github.com/riskibarqy/live-sports-hub/internal/domain/favorite"
	"github.com/riskibarqy/live-sports-hub/internal/domain/match"
	"github.com/riskibarqy/live-sports-hub/internal/domain/setting"
	"github.com/riskibarqy/live-sports-hub/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/live-sports-hub/internal/infrastructure/repository/sqlstore"
	"github.com/riskibarqy/live-sports-hub/internal/platform/logging"
)

// Store groups the persistence ports. DB is nil for the memory driver.
type Store struct {
	DB        *sqlx.DB
	Favorites favorite.Repository
	Settings  setting.Repository
	Cache     match.SnapshotCache
}

// OpenStore migrates and opens the configured database.
func OpenStore(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Default()
	}

	if cfg.DBDriver == config.DBDriverMemory {
		logger.Warn("using in-memory store; favorites and settings are not persisted")
		return &Store{
			Favorites: memory.NewFavoriteRepository(time.Now),
			Settings:  memory.NewSettingsRepository(),
			Cache:     memory.NewSnapshotCache(time.Now),
		}, nil
	}

	if err := sqlstore.Migrate(cfg.DBDriver, cfg.DBURL); err != nil {
		return nil, fmt.Errorf("migrate %s store: %w", cfg.DBDriver, err)
	}

	db, err := sqlstore.Open(ctx, sqlstore.Options{
		Driver: cfg.DBDriver,
		DSN:    cfg.DBURL,
		DBName: dbNameFromURL(cfg.DBDriver, cfg.DBURL),
	})
	if err != nil {
		return nil, err
	}

	logger.Info("store opened", "driver", cfg.DBDriver)

	return &Store{
		DB:        db,
		Favorites: sqlstore.NewFavoriteRepository(db, time.Now),
		Settings:  sqlstore.NewSettingsRepository(db),
		Cache:     sqlstore.NewSnapshotCacheRepository(db, time.Now, logger.Named("snapshot_cache")),
	}, nil
}

func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
