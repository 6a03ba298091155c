package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/live-sports-hub/internal/platform/logging"
	"github.com/riskibarqy/live-sports-hub/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

type Handler struct {
	poller    *usecase.PollingController
	board     *usecase.LiveBoard
	favorites *usecase.FavoriteService
	settings  *usecase.SettingsService
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(
	poller *usecase.PollingController,
	board *usecase.LiveBoard,
	favorites *usecase.FavoriteService,
	settings *usecase.SettingsService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		poller:    poller,
		board:     board,
		favorites: favorites,
		settings:  settings,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStatus")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, statusDTO{
		Poller: h.poller.Status(),
		Board:  h.board.Status(),
	})
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSnapshot")
	defer span.End()

	snapshot, ok := h.board.Snapshot()
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: no snapshot has been published yet", usecase.ErrNotFound))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snapshot)
}

func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetBoard")
	defer span.End()

	ids, err := h.favorites.IDs(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "load favorite ids failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	rows := h.board.Rows(ids, r.URL.Query().Get("q"))
	writeSuccess(ctx, w, http.StatusOK, boardDTO{
		Status: h.board.Status(),
		Rows:   rows,
	})
}

func (h *Handler) PutSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PutSession")
	defer span.End()

	var req sessionRequest
	if err := h.decodeJSON(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	session := usecase.Session{Sport: req.Sport, League: req.League}.Normalize()
	sessionID, err := h.poller.Start(ctx, session)
	if err != nil {
		h.logger.WarnContext(ctx, "start poll session failed", "sport", session.Sport, "error", err)
		writeError(ctx, w, err)
		return
	}
	if err := h.settings.SaveSession(ctx, session); err != nil {
		// The session is already running; only persistence failed.
		h.logger.WarnContext(ctx, "persist poll session failed", "sport", session.Sport, "error", err)
	}

	writeSuccess(ctx, w, http.StatusAccepted, sessionDTO{SessionID: sessionID, Session: session})
}

func (h *Handler) PostRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PostRefresh")
	defer span.End()

	sessionID, err := h.poller.Refresh(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "refresh poll session failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	session, _ := h.poller.Session()
	writeSuccess(ctx, w, http.StatusAccepted, sessionDTO{SessionID: sessionID, Session: session})
}

func (h *Handler) decodeJSON(ctx context.Context, body io.Reader, out any) error {
	decoder := sonic.ConfigDefault.NewDecoder(io.LimitReader(body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, out)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func pathValue(r *http.Request, name string) string {
	return strings.TrimSpace(r.PathValue(name))
}
