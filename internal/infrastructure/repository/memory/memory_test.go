package memory

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/live-sports-hub/internal/domain/favorite"
	"github.com/riskibarqy/live-sports-hub/internal/domain/match"
)

func TestSnapshotCache_FreshnessAndIsolation(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	cache := NewSnapshotCache(func() time.Time { return now })
	ctx := context.Background()

	snapshot := match.Snapshot{Sport: "Soccer", Events: []match.MatchEvent{{ID: "1000", HomeTeam: "Real Madrid"}}}
	if err := cache.Put(ctx, "k", snapshot); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	snapshot.Events[0].HomeTeam = "mutated after put"

	got, ok := cache.Get(ctx, "k", time.Minute)
	if !ok {
		t.Fatalf("expected fresh entry")
	}
	if got.Events[0].HomeTeam != "Real Madrid" {
		t.Fatalf("cache must hold its own copy, got %q", got.Events[0].HomeTeam)
	}

	now = now.Add(time.Minute)
	if _, ok := cache.Get(ctx, "k", time.Minute); ok {
		t.Fatalf("expected entry to expire at maxAge")
	}
}

func TestFavoriteRepository_InsertOrIgnore(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	repo := NewFavoriteRepository(func() time.Time { return now })
	ctx := context.Background()

	_ = repo.Add(ctx, favorite.Favorite{EventID: "1000", HomeTeam: "Real Madrid"})
	now = now.Add(time.Second)
	_ = repo.Add(ctx, favorite.Favorite{EventID: "1001", HomeTeam: "Chelsea"})
	_ = repo.Add(ctx, favorite.Favorite{EventID: "1000", HomeTeam: "ignored"})

	items, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(items) != 2 || items[0].EventID != "1001" || items[1].HomeTeam != "Real Madrid" {
		t.Fatalf("unexpected favorites: %+v", items)
	}

	_ = repo.Remove(ctx, "1001")
	if ok, _ := repo.Exists(ctx, "1001"); ok {
		t.Fatalf("expected favorite to be removed")
	}
}
