package match

import (
	"strconv"
	"strings"
)

const (
	TeamSeparator    = " vs "
	PlaceholderHome  = "Team A"
	PlaceholderAway  = "Team B"
	ProgressFallback = "00:00"
)

// Normalize turns a provider record into a usable MatchEvent. It never fails.
func Normalize(raw RawEvent) MatchEvent {
	event := MatchEvent{
		ID:            raw.IDEvent.String(),
		Sport:         raw.StrSport.String(),
		League:        raw.StrLeague.String(),
		Name:          raw.StrEvent.String(),
		HomeTeam:      raw.StrHomeTeam.String(),
		AwayTeam:      raw.StrAwayTeam.String(),
		HomeScore:     parseScore(raw.IntHomeScore.String()),
		AwayScore:     parseScore(raw.IntAwayScore.String()),
		Status:        Status(raw.StrStatus.String()),
		Progress:      raw.StrProgress.String(),
		ScheduledTime: raw.StrTime.String(),
		Date:          raw.DateEvent.String(),
	}
	return event.Normalize()
}

// NormalizeAll keeps provider ordering.
func NormalizeAll(items []RawEvent) []MatchEvent {
	out := make([]MatchEvent, 0, len(items))
	for _, item := range items {
		out = append(out, Normalize(item))
	}
	return out
}

// Normalize applies the defaulting rules to an event. Applying it twice is a no-op.
func (e MatchEvent) Normalize() MatchEvent {
	e.ID = strings.TrimSpace(e.ID)
	e.Name = strings.TrimSpace(e.Name)
	e.HomeTeam = strings.TrimSpace(e.HomeTeam)
	e.AwayTeam = strings.TrimSpace(e.AwayTeam)

	if e.HomeTeam == "" || e.AwayTeam == "" {
		home, away, ok := SplitTeams(e.Name)
		if e.HomeTeam == "" {
			if ok {
				e.HomeTeam = home
			} else {
				e.HomeTeam = PlaceholderHome
			}
		}
		if e.AwayTeam == "" {
			if ok {
				e.AwayTeam = away
			} else {
				e.AwayTeam = PlaceholderAway
			}
		}
	}

	if e.HomeScore < 0 {
		e.HomeScore = 0
	}
	if e.AwayScore < 0 {
		e.AwayScore = 0
	}

	e.Status = NormalizeStatus(string(e.Status))

	e.Progress = strings.TrimSpace(e.Progress)
	e.ScheduledTime = strings.TrimSpace(e.ScheduledTime)
	if e.Progress == "" {
		e.Progress = firstNonEmpty(e.ScheduledTime, ProgressFallback)
	}

	return e
}

// SplitTeams splits "Home vs Away". Both halves must be non-empty.
func SplitTeams(label string) (string, string, bool) {
	idx := strings.Index(label, TeamSeparator)
	if idx < 0 {
		return "", "", false
	}
	home := strings.TrimSpace(label[:idx])
	rest := label[idx+len(TeamSeparator):]
	if last := strings.LastIndex(rest, TeamSeparator); last >= 0 {
		rest = rest[last+len(TeamSeparator):]
	}
	away := strings.TrimSpace(rest)
	if home == "" || away == "" {
		return "", "", false
	}
	return home, away, true
}

// NormalizeStatus maps provider spellings onto the Status enum.
func NormalizeStatus(value string) Status {
	trimmed := strings.TrimSpace(value)
	switch Status(trimmed) {
	case StatusScheduled, StatusLive, StatusHalfTime, StatusFullTime, StatusPostponed, StatusCancelled:
		return Status(trimmed)
	}

	switch strings.ToUpper(trimmed) {
	case "", "NS", "NOT STARTED", "TBD", "SCHEDULED", "TIME TO BE DEFINED":
		return StatusScheduled
	case "LIVE", "IN PLAY", "IN PROGRESS", "1H", "2H", "ET", "P", "BT", "Q1", "Q2", "Q3", "Q4", "OT":
		return StatusLive
	case "HT", "HALFTIME", "HALF TIME", "HALF-TIME", "BREAK":
		return StatusHalfTime
	case "FT", "AET", "PEN", "AP", "MATCH FINISHED", "FINISHED", "FULL TIME", "FULLTIME", "AOT":
		return StatusFullTime
	case "PST", "POSTPONED", "DELAYED", "SUSP", "SUSPENDED", "INT", "INTERRUPTED":
		return StatusPostponed
	case "CANC", "CANCELLED", "CANCELED", "ABD", "ABANDONED", "AWD", "WO":
		return StatusCancelled
	default:
		return StatusScheduled
	}
}

func parseScore(value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
