package favorite

import (
	"strings"
	"time"

	"github.com/riskibarqy/live-sports-hub/internal/domain/match"
)

// Favorite is a user-pinned match, kept independently of snapshots.
type Favorite struct {
	EventID  string
	Sport    string
	HomeTeam string
	AwayTeam string
	League   string
	AddedAt  time.Time
}

func FromEvent(event match.MatchEvent) Favorite {
	return Favorite{
		EventID:  strings.TrimSpace(event.ID),
		Sport:    event.Sport,
		HomeTeam: event.HomeTeam,
		AwayTeam: event.AwayTeam,
		League:   event.League,
	}
}

// IDSet is the lookup form renderers use.
type IDSet map[string]struct{}

func NewIDSet(items []Favorite) IDSet {
	out := make(IDSet, len(items))
	for _, item := range items {
		out[item.EventID] = struct{}{}
	}
	return out
}

func (s IDSet) Contains(eventID string) bool {
	_, ok := s[eventID]
	return ok
}
