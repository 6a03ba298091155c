package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/live-sports-hub/internal/domain/favorite"
	qb "github.com/riskibarqy/live-sports-hub/internal/platform/querybuilder"
)

type FavoriteRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewFavoriteRepository(db *sqlx.DB, now func() time.Time) *FavoriteRepository {
	if now == nil {
		now = time.Now
	}
	return &FavoriteRepository{db: db, now: now}
}

// Add keeps the first insert for an event id; later adds are ignored.
func (r *FavoriteRepository) Add(ctx context.Context, item favorite.Favorite) error {
	addedAt := item.AddedAt
	if addedAt.IsZero() {
		addedAt = r.now()
	}

	model := favoriteTableModel{
		EventID:   strings.TrimSpace(item.EventID),
		Sport:     item.Sport,
		HomeTeam:  item.HomeTeam,
		AwayTeam:  item.AwayTeam,
		League:    item.League,
		AddedAtMS: addedAt.UTC().UnixMilli(),
	}
	query, args, err := qb.InsertModel("favorites", model, `ON CONFLICT (event_id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("build insert favorite query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("insert favorite event_id=%s: %w", model.EventID, err)
	}
	return nil
}

func (r *FavoriteRepository) Remove(ctx context.Context, eventID string) error {
	query, args, err := qb.DeleteFrom("favorites").
		Where(qb.Eq("event_id", strings.TrimSpace(eventID))).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete favorite query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("delete favorite event_id=%s: %w", eventID, err)
	}
	return nil
}

// List returns favorites newest first.
func (r *FavoriteRepository) List(ctx context.Context) ([]favorite.Favorite, error) {
	query, args, err := qb.Select("event_id", "sport", "home_team", "away_team", "league", "added_at_ms").
		From("favorites").
		OrderBy("added_at_ms DESC", "event_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list favorites query: %w", err)
	}

	var rows []favoriteTableModel
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select favorites: %w", err)
	}

	out := make([]favorite.Favorite, 0, len(rows))
	for _, row := range rows {
		out = append(out, favorite.Favorite{
			EventID:  row.EventID,
			Sport:    row.Sport,
			HomeTeam: row.HomeTeam,
			AwayTeam: row.AwayTeam,
			League:   row.League,
			AddedAt:  time.UnixMilli(row.AddedAtMS).UTC(),
		})
	}
	return out, nil
}

func (r *FavoriteRepository) Exists(ctx context.Context, eventID string) (bool, error) {
	query, args, err := qb.Select("1").From("favorites").
		Where(qb.Eq("event_id", strings.TrimSpace(eventID))).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build favorite exists query: %w", err)
	}

	var one int
	if err := r.db.GetContext(ctx, &one, r.db.Rebind(query), args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("favorite exists event_id=%s: %w", eventID, err)
	}
	return true, nil
}
