package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/riskibarqy/live-sports-hub/internal/domain/match"
	"github.com/riskibarqy/live-sports-hub/internal/usecase"
)

func TestWriteRows(t *testing.T) {
	rows := []usecase.BoardRow{
		{
			MatchEvent: match.MatchEvent{ID: "1", HomeTeam: "Real Madrid", AwayTeam: "Barcelona", League: "La Liga", Status: match.StatusLive, Progress: "67'"},
			Score:      "2 - 1",
			Favorite:   true,
		},
		{
			MatchEvent: match.MatchEvent{ID: "2", HomeTeam: "Chelsea", AwayTeam: "Arsenal", League: "Premier League", Status: match.StatusFullTime, Progress: "FT"},
			Score:      "0 - 0",
		},
	}

	var buf bytes.Buffer
	if err := writeRows(&buf, rows); err != nil {
		t.Fatalf("write rows: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "FAV") {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "*") || !strings.Contains(lines[1], "Real Madrid vs Barcelona") {
		t.Fatalf("unexpected favorite row: %q", lines[1])
	}
	if strings.HasPrefix(lines[2], "*") || !strings.Contains(lines[2], "0 - 0") {
		t.Fatalf("unexpected second row: %q", lines[2])
	}
}
