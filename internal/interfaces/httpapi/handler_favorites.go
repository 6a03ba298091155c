package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/live-sports-hub/internal/domain/favorite"
	"github.com/riskibarqy/live-sports-hub/internal/usecase"
)

func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFavorites")
	defer span.End()

	items, err := h.favorites.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list favorites failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]favoriteDTO, 0, len(items))
	for _, item := range items {
		out = append(out, favoriteToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

// AddFavorite pins an event. With only event_id set the remaining fields are
// copied from the event currently on the board.
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddFavorite")
	defer span.End()

	var req addFavoriteRequest
	if err := h.decodeJSON(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	var (
		item favorite.Favorite
		err  error
	)
	if req.HomeTeam == "" && req.AwayTeam == "" {
		item, err = h.favorites.AddEvent(ctx, req.EventID)
	} else {
		item = favorite.Favorite{
			EventID:  req.EventID,
			Sport:    req.Sport,
			HomeTeam: req.HomeTeam,
			AwayTeam: req.AwayTeam,
			League:   req.League,
		}
		err = h.favorites.Add(ctx, item)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "add favorite failed", "event_id", req.EventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, favoriteToDTO(item))
}

func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemoveFavorite")
	defer span.End()

	eventID := pathValue(r, "eventID")
	if err := h.favorites.Remove(ctx, eventID); err != nil {
		h.logger.WarnContext(ctx, "remove favorite failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"event_id": eventID})
}

func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ToggleFavorite")
	defer span.End()

	eventID := pathValue(r, "eventID")
	if eventID == "" {
		writeError(ctx, w, fmt.Errorf("%w: event id is required", usecase.ErrInvalidInput))
		return
	}

	added, err := h.favorites.Toggle(ctx, eventID)
	if err != nil {
		h.logger.WarnContext(ctx, "toggle favorite failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toggleFavoriteDTO{EventID: eventID, Favorite: added})
}
