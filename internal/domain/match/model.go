package match

import (
	"bytes"
	"strconv"
	"strings"
	"time"
)

type Status string

const (
	StatusScheduled Status = "Scheduled"
	StatusLive      Status = "Live"
	StatusHalfTime  Status = "HT"
	StatusFullTime  Status = "FT"
	StatusPostponed Status = "Postponed"
	StatusCancelled Status = "Cancelled"
)

// Source tells where a snapshot came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
	SourceImport   Source = "import"
)

// MatchEvent is one normalized match row.
type MatchEvent struct {
	ID            string `json:"id"`
	Sport         string `json:"sport"`
	League        string `json:"league"`
	Name          string `json:"name"`
	HomeTeam      string `json:"home_team"`
	AwayTeam      string `json:"away_team"`
	HomeScore     int    `json:"home_score"`
	AwayScore     int    `json:"away_score"`
	Status        Status `json:"status"`
	Progress      string `json:"progress"`
	ScheduledTime string `json:"scheduled_time"`
	Date          string `json:"date"`
}

func (e MatchEvent) IsLive() bool {
	return e.Status == StatusLive || e.Status == StatusHalfTime
}

// Snapshot is the full result of one poll cycle. Published snapshots are
// never mutated; hand out Clone() to consumers that may edit.
type Snapshot struct {
	Sport      string       `json:"sport"`
	League     string       `json:"league"`
	Source     Source       `json:"source"`
	CapturedAt time.Time    `json:"captured_at"`
	Events     []MatchEvent `json:"events"`
}

func (s Snapshot) Clone() Snapshot {
	out := s
	if s.Events != nil {
		out.Events = append([]MatchEvent(nil), s.Events...)
	}
	return out
}

func (s Snapshot) WithSource(source Source) Snapshot {
	out := s.Clone()
	out.Source = source
	return out
}

func (s Snapshot) FindEvent(eventID string) (MatchEvent, bool) {
	for _, item := range s.Events {
		if item.ID == eventID {
			return item, true
		}
	}
	return MatchEvent{}, false
}

// RawEvent mirrors one item of the provider's eventsday payload.
type RawEvent struct {
	IDEvent      FlexString `json:"idEvent"`
	StrEvent     FlexString `json:"strEvent"`
	StrLeague    FlexString `json:"strLeague"`
	StrSport     FlexString `json:"strSport"`
	StrHomeTeam  FlexString `json:"strHomeTeam"`
	StrAwayTeam  FlexString `json:"strAwayTeam"`
	IntHomeScore FlexString `json:"intHomeScore"`
	IntAwayScore FlexString `json:"intAwayScore"`
	StrStatus    FlexString `json:"strStatus"`
	StrProgress  FlexString `json:"strProgress"`
	StrTime      FlexString `json:"strTime"`
	DateEvent    FlexString `json:"dateEvent"`
}

// FlexString accepts JSON strings, numbers and null. The provider is not
// consistent about quoting scores and ids.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		value, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		*f = FlexString(value)
		return nil
	}
	*f = FlexString(strings.TrimSpace(string(data)))
	return nil
}

func (f FlexString) String() string {
	return strings.TrimSpace(string(f))
}
