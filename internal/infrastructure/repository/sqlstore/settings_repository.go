package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/live-sports-hub/internal/domain/setting"
	qb "github.com/riskibarqy/live-sports-hub/internal/platform/querybuilder"
)

type SettingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	query, args, err := qb.Select("value").From("settings").
		Where(qb.Eq("key", strings.TrimSpace(key))).
		ToSQL()
	if err != nil {
		return "", false, fmt.Errorf("build get setting query: %w", err)
	}

	var value string
	if err := r.db.GetContext(ctx, &value, r.db.Rebind(query), args...); err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get setting key=%s: %w", key, err)
	}

	return value, true, nil
}

func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	model := settingTableModel{
		Key:   strings.TrimSpace(key),
		Value: value,
	}
	query, args, err := qb.InsertModel("settings", model, `ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`)
	if err != nil {
		return fmt.Errorf("build upsert setting query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("upsert setting key=%s: %w", model.Key, err)
	}
	return nil
}

func (r *SettingsRepository) List(ctx context.Context) ([]setting.Setting, error) {
	query, args, err := qb.Select("key", "value").From("settings").
		OrderBy("key").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list settings query: %w", err)
	}

	var rows []settingTableModel
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select settings: %w", err)
	}

	out := make([]setting.Setting, 0, len(rows))
	for _, row := range rows {
		out = append(out, setting.Setting{Key: row.Key, Value: row.Value})
	}
	return out, nil
}
