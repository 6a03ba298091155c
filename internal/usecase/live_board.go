package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/live-sports-hub/internal/domain/favorite"
	"github.com/riskibarqy/live-sports-hub/internal/domain/match"
)

// LiveBoard keeps the most recent published snapshot for readers such as the
// HTTP API. It is a SnapshotSink.
type LiveBoard struct {
	mu        sync.RWMutex
	snapshot  match.Snapshot
	hasData   bool
	progress  int
	lastErr   string
	updatedAt time.Time
	now       func() time.Time
}

type BoardStatus struct {
	HasSnapshot bool         `json:"has_snapshot"`
	Source      match.Source `json:"source,omitempty"`
	Sport       string       `json:"sport,omitempty"`
	League      string       `json:"league,omitempty"`
	CapturedAt  time.Time    `json:"captured_at,omitzero"`
	UpdatedAt   time.Time    `json:"updated_at,omitzero"`
	EventCount  int          `json:"event_count"`
	Progress    int          `json:"progress"`
	Degraded    bool         `json:"degraded"`
	LastError   string       `json:"last_error,omitempty"`
}

// BoardRow is one rendered match line.
type BoardRow struct {
	match.MatchEvent
	Score    string `json:"score"`
	Favorite bool   `json:"favorite"`
}

func NewLiveBoard(now func() time.Time) *LiveBoard {
	if now == nil {
		now = time.Now
	}
	return &LiveBoard{now: now}
}

func (b *LiveBoard) PublishSnapshot(_ context.Context, snapshot match.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.snapshot = snapshot.Clone()
	b.hasData = true
	b.updatedAt = b.now()
	if snapshot.Source != match.SourceFallback {
		b.lastErr = ""
	}
}

func (b *LiveBoard) PublishProgress(_ context.Context, percent int) {
	b.mu.Lock()
	b.progress = min(max(percent, 0), 100)
	b.mu.Unlock()
}

func (b *LiveBoard) PublishError(_ context.Context, err error) {
	if err == nil {
		return
	}
	b.mu.Lock()
	b.lastErr = err.Error()
	b.mu.Unlock()
}

func (b *LiveBoard) Snapshot() (match.Snapshot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshot.Clone(), b.hasData
}

func (b *LiveBoard) FindEvent(eventID string) (match.MatchEvent, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshot.FindEvent(strings.TrimSpace(eventID))
}

func (b *LiveBoard) Status() BoardStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()

	status := BoardStatus{
		HasSnapshot: b.hasData,
		Progress:    b.progress,
		LastError:   b.lastErr,
		UpdatedAt:   b.updatedAt,
	}
	if b.hasData {
		status.Source = b.snapshot.Source
		status.Sport = b.snapshot.Sport
		status.League = b.snapshot.League
		status.CapturedAt = b.snapshot.CapturedAt
		status.EventCount = len(b.snapshot.Events)
		status.Degraded = b.snapshot.Source == match.SourceFallback
	}
	return status
}

// Rows returns the current events marked against favorites and narrowed by a
// case-insensitive substring filter. An empty filter keeps every row.
func (b *LiveBoard) Rows(favorites favorite.IDSet, filter string) []BoardRow {
	b.mu.RLock()
	events := b.snapshot.Events
	b.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(filter))
	rows := make([]BoardRow, 0, len(events))
	for _, event := range events {
		row := BoardRow{
			MatchEvent: event,
			Score:      fmt.Sprintf("%d - %d", event.HomeScore, event.AwayScore),
			Favorite:   favorites.Contains(event.ID),
		}
		if needle != "" && !row.matches(needle) {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func (r BoardRow) matches(needle string) bool {
	for _, field := range []string{r.Name, r.HomeTeam, r.AwayTeam, r.League, string(r.Status), r.Progress, r.Score} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
