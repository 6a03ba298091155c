package usecase

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/riskibarqy/live-sports-hub/internal/domain/match"
)

const FallbackEventCount = 6

var fallbackPairs = [...][2]string{
	{"Real Madrid", "Barcelona"},
	{"Manchester United", "Liverpool"},
	{"Bayern Munich", "Dortmund"},
	{"Juventus", "Inter Milan"},
	{"PSG", "Marseille"},
	{"Chelsea", "Arsenal"},
}

var fallbackLeagues = [...]string{"La Liga", "Premier League", "Bundesliga", "Serie A"}

var fallbackStatuses = [...]match.Status{match.StatusLive, match.StatusHalfTime, match.StatusFullTime, match.StatusScheduled}

// FallbackGenerator produces placeholder snapshots while the provider is
// unreachable. With a fixed seed every call returns the same events.
type FallbackGenerator struct {
	seed  uint64
	fixed bool
	now   func() time.Time
}

// NewFallbackGenerator uses a time-based seed when seed is nil.
func NewFallbackGenerator(seed *uint64, now func() time.Time) *FallbackGenerator {
	if now == nil {
		now = time.Now
	}
	g := &FallbackGenerator{now: now}
	if seed != nil {
		g.seed = *seed
		g.fixed = true
	}
	return g
}

func (g *FallbackGenerator) Generate(sport, league string, capturedAt time.Time) match.Snapshot {
	seed := g.seed
	if !g.fixed {
		seed = uint64(g.now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	day := capturedAt.Format(match.DateLayout)
	events := make([]match.MatchEvent, 0, FallbackEventCount)
	for i := range FallbackEventCount {
		pair := fallbackPairs[rng.IntN(len(fallbackPairs))]
		homeScore := rng.IntN(5)
		awayScore := rng.IntN(5)
		status := fallbackStatuses[rng.IntN(len(fallbackStatuses))]

		minute := 90
		switch status {
		case match.StatusLive:
			minute = 1 + rng.IntN(90)
		case match.StatusHalfTime:
			minute = 45
		}
		progress := string(status)
		if status == match.StatusLive {
			progress = fmt.Sprintf("%d'", minute)
		}

		eventLeague := fallbackLeagues[rng.IntN(len(fallbackLeagues))]
		kickoff := fmt.Sprintf("%02d:00", 12+rng.IntN(12))

		events = append(events, match.MatchEvent{
			ID:            strconv.Itoa(1000 + i),
			Sport:         sport,
			League:        eventLeague,
			Name:          pair[0] + match.TeamSeparator + pair[1],
			HomeTeam:      pair[0],
			AwayTeam:      pair[1],
			HomeScore:     homeScore,
			AwayScore:     awayScore,
			Status:        status,
			Progress:      progress,
			ScheduledTime: kickoff,
			Date:          day,
		})
	}

	return match.Snapshot{
		Sport:      sport,
		League:     league,
		Source:     match.SourceFallback,
		CapturedAt: capturedAt,
		Events:     events,
	}
}
