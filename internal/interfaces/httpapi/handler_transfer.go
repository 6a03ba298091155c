package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/live-sports-hub/internal/domain/match"
	"github.com/riskibarqy/live-sports-hub/internal/usecase"
)

// ExportSnapshot streams the board's snapshot as a downloadable JSON file.
func (h *Handler) ExportSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ExportSnapshot")
	defer span.End()

	snapshot, ok := h.board.Snapshot()
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: no snapshot to export", usecase.ErrNotFound))
		return
	}

	filename := fmt.Sprintf("live_scores_%s.json", snapshot.CapturedAt.UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := usecase.ExportSnapshot(w, snapshot); err != nil {
		h.logger.ErrorContext(ctx, "export snapshot failed", "error", err)
	}
}

// ImportSnapshot replaces the board's snapshot with an uploaded document.
// A running poll session will overwrite it on its next cycle.
func (h *Handler) ImportSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportSnapshot")
	defer span.End()

	snapshot, err := usecase.ImportSnapshot(r.Body, time.Now)
	if err != nil {
		h.logger.WarnContext(ctx, "import snapshot failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.board.PublishSnapshot(ctx, snapshot)
	writeSuccess(ctx, w, http.StatusOK, importDTO{
		Source:     match.SourceImport,
		EventCount: len(snapshot.Events),
		CapturedAt: snapshot.CapturedAt,
	})
}
