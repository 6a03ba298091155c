package httpapi

import (
	"net/http"

	"github.com/riskibarqy/live-sports-hub/internal/domain/setting"
)

func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSettings")
	defer span.End()

	items, err := h.settings.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list settings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]settingDTO, 0, len(items))
	for _, item := range items {
		out = append(out, settingDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetSetting(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSetting")
	defer span.End()

	key := pathValue(r, "key")
	value, err := h.settings.Get(ctx, key)
	if err != nil {
		h.logger.WarnContext(ctx, "get setting failed", "key", key, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, settingDTO{Key: key, Value: value})
}

func (h *Handler) PutSetting(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PutSetting")
	defer span.End()

	key := pathValue(r, "key")
	var req putSettingRequest
	if err := h.decodeJSON(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.settings.Set(ctx, key, req.Value); err != nil {
		h.logger.WarnContext(ctx, "put setting failed", "key", key, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, settingDTO(setting.Setting{Key: key, Value: req.Value}))
}
