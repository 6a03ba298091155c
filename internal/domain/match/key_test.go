package match

import (
	"testing"
	"time"
)

func TestNewCacheKey(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 3, 7, 22, 15, 0, 0, time.UTC)

	if got := NewCacheKey("Soccer", "", day).String(); got != "events_Soccer_all_2026-03-07" {
		t.Fatalf("unexpected key without league: %s", got)
	}
	if got := NewCacheKey("Soccer", "English Premier League", day).String(); got != "events_Soccer_English Premier League_2026-03-07" {
		t.Fatalf("unexpected key with league: %s", got)
	}
}

func TestResolveSport(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"football":   "Soccer",
		"Basketball": "Basketball",
		"":           DefaultSport,
		"Ice Hockey": "Ice Hockey",
	}
	for input, want := range cases {
		if got := ResolveSport(input); got != want {
			t.Fatalf("ResolveSport(%q)=%q, want %q", input, got, want)
		}
	}
}
