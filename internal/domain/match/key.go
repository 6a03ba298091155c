package match

import (
	"strings"
	"time"
)

const (
	AllLeagues = "all"
	DateLayout = "2006-01-02"
)

// CacheKey scopes cached snapshots to one sport, league and calendar day.
type CacheKey struct {
	Sport  string
	League string
	Date   string
}

func NewCacheKey(sport, league string, day time.Time) CacheKey {
	league = strings.TrimSpace(league)
	if league == "" {
		league = AllLeagues
	}
	return CacheKey{
		Sport:  strings.TrimSpace(sport),
		League: league,
		Date:   day.Format(DateLayout),
	}
}

func (k CacheKey) String() string {
	return "events_" + k.Sport + "_" + k.League + "_" + k.Date
}
