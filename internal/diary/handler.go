package diary

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mindlog/internal/auth/session"
	"mindlog/internal/platform/middleware"
	dErrors "mindlog/pkg/domain-errors"
	"mindlog/pkg/platform/httputil"
)

// Handler serves the diary endpoints. Every route requires an authenticated
// web session.
type Handler struct {
	logger   *slog.Logger
	store    Store
	sessions *session.Manager
}

// NewHandler creates a diary Handler.
func NewHandler(store Store, sessions *session.Manager, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, store: store, sessions: sessions}
}

// Register mounts the diary routes.
func (h *Handler) Register(r chi.Router) {
	diaryRouter := chi.NewRouter()
	diaryRouter.Use(middleware.Recovery(h.logger))
	diaryRouter.Use(middleware.RequestID)
	diaryRouter.Use(middleware.ClientMetadata)
	diaryRouter.Use(middleware.Logger(h.logger))
	diaryRouter.Use(middleware.Timeout(10 * time.Second))

	diaryRouter.Post("/entries", h.handleCreateEntry)
	diaryRouter.Get("/entries", h.handleListEntries)
	diaryRouter.Get("/stats/daily", h.handleDailyStats)

	r.Mount("/diary", diaryRouter)
}

type createEntryRequest struct {
	Date     string   `json:"date"`
	Content  string   `json:"content"`
	Emotions []string `json:"emotions"`
}

func (h *Handler) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.authenticated(w, r)
	if !ok {
		return
	}

	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "date must be YYYY-MM-DD"))
		return
	}
	if req.Content == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "content is required"))
		return
	}

	entry := &Entry{
		ID:        uuid.NewString(),
		UserID:    sess.UserID,
		Date:      req.Date,
		Content:   req.Content,
		Emotions:  req.Emotions,
		CreatedAt: time.Now(),
	}
	if err := h.store.Create(r.Context(), entry); err != nil {
		h.logger.ErrorContext(r.Context(), "diary entry create failed", "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "could not save entry"))
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleListEntries(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.authenticated(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	entries, err := h.store.ListByUser(r.Context(), sess.UserID, q.Get("from"), q.Get("to"))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "diary entry list failed", "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "could not list entries"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.authenticated(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	counts, err := h.store.CountEmotionsByDay(r.Context(), sess.UserID, q.Get("from"), q.Get("to"))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "emotion aggregation failed", "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "could not aggregate emotions"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"daily": counts})
}

func (h *Handler) authenticated(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := h.sessions.Request(w, r)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "session load failed", "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "session error"))
		return nil, false
	}
	if !sess.Authenticated() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "login required"))
		return nil, false
	}
	return sess, true
}
