package usecase

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/riskibarqy/live-sports-hub/internal/domain/match"
)

func TestExportImportSnapshot(t *testing.T) {
	t.Parallel()

	original := match.Snapshot{
		Sport:      "Soccer",
		League:     "La Liga",
		Source:     match.SourceLive,
		CapturedAt: testDay,
		Events: []match.MatchEvent{
			{ID: "1", Name: "Atlético vs Málaga", HomeTeam: "Atlético", AwayTeam: "Málaga", HomeScore: 1, Status: match.StatusLive, Progress: "12'"},
		},
	}

	var buf bytes.Buffer
	if err := ExportSnapshot(&buf, original); err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(buf.String(), "Atlético") {
		t.Fatalf("expected unescaped non-ASCII text, got %s", buf.String())
	}
	if !strings.Contains(buf.String(), "\n  \"sport\"") {
		t.Fatalf("expected indented output, got %s", buf.String())
	}

	imported, err := ImportSnapshot(&buf, fixedNow)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if imported.Source != match.SourceImport {
		t.Fatalf("unexpected source: %s", imported.Source)
	}
	if !imported.CapturedAt.Equal(testDay) {
		t.Fatalf("captured_at not preserved: %s", imported.CapturedAt)
	}
	if len(imported.Events) != 1 || imported.Events[0] != original.Events[0] {
		t.Fatalf("unexpected events: %+v", imported.Events)
	}
}

func TestImportSnapshot_NormalizesAndRejectsGarbage(t *testing.T) {
	t.Parallel()

	doc := `{"sport":"football","events":[{"id":" 9 ","name":"Lyon vs Nice","status":"weird","home_score":-2}]}`
	snapshot, err := ImportSnapshot(strings.NewReader(doc), fixedNow)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	event := snapshot.Events[0]
	if event.ID != "9" || event.HomeTeam != "Lyon" || event.AwayTeam != "Nice" || event.HomeScore != 0 {
		t.Fatalf("event not normalized: %+v", event)
	}
	if event.Status != match.StatusScheduled {
		t.Fatalf("unknown status should map to Scheduled, got %s", event.Status)
	}
	if snapshot.Sport != "Soccer" || !snapshot.CapturedAt.Equal(testDay) {
		t.Fatalf("unexpected header: %+v", snapshot)
	}

	for _, input := range []string{"", "   ", "{not json"} {
		if _, err := ImportSnapshot(strings.NewReader(input), fixedNow); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("input %q: expected ErrInvalidInput, got %v", input, err)
		}
	}
}
