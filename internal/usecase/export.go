package usecase

import (
	"fmt"
	"io"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/live-sports-hub/internal/domain/match"
	"github.com/valyala/bytebufferpool"
)

const maxImportBytes = 8 << 20

// ExportSnapshot writes snapshot as indented JSON. Non-ASCII text is kept
// as-is rather than escaped.
func ExportSnapshot(w io.Writer, snapshot match.Snapshot) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	enc := sonic.ConfigDefault.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if snapshot.Events == nil {
		snapshot.Events = []match.MatchEvent{}
	}
	if err := enc.Encode(snapshot); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// ImportSnapshot reads a document produced by ExportSnapshot. Events are
// normalized again and the snapshot is marked as imported.
func ImportSnapshot(r io.Reader, now func() time.Time) (match.Snapshot, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxImportBytes+1))
	if err != nil {
		return match.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	if len(raw) > maxImportBytes {
		return match.Snapshot{}, fmt.Errorf("%w: snapshot document exceeds %d bytes", ErrInvalidInput, maxImportBytes)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return match.Snapshot{}, fmt.Errorf("%w: snapshot document is empty", ErrInvalidInput)
	}

	var snapshot match.Snapshot
	if err := sonic.Unmarshal(raw, &snapshot); err != nil {
		return match.Snapshot{}, fmt.Errorf("%w: decode snapshot: %v", ErrInvalidInput, err)
	}

	for i := range snapshot.Events {
		snapshot.Events[i] = snapshot.Events[i].Normalize()
	}
	if snapshot.Events == nil {
		snapshot.Events = []match.MatchEvent{}
	}
	snapshot.Sport = match.ResolveSport(snapshot.Sport)
	snapshot.Source = match.SourceImport
	if snapshot.CapturedAt.IsZero() {
		if now == nil {
			now = time.Now
		}
		snapshot.CapturedAt = now()
	}
	return snapshot, nil
}
