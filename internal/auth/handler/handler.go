// Package handler exposes the auth flow over HTTP. It stays thin: parse the
// request, call the service, translate the result into a redirect or a page.
package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"mindlog/internal/auth/device"
	"mindlog/internal/auth/service"
	"mindlog/internal/auth/session"
	"mindlog/internal/platform/metrics"
	"mindlog/internal/platform/middleware"
	"mindlog/internal/ratelimit"
	"mindlog/pkg/requestcontext"
)

// Handler handles the auth endpoints.
type Handler struct {
	logger   *slog.Logger
	metrics  *metrics.Metrics
	auth     *service.Service
	sessions *session.Manager
	limiter  *ratelimit.Limiter
}

// New creates an auth Handler.
func New(auth *service.Service, sessions *session.Manager, logger *slog.Logger, m *metrics.Metrics, limiter *ratelimit.Limiter) *Handler {
	return &Handler{
		logger:   logger,
		metrics:  m,
		auth:     auth,
		sessions: sessions,
		limiter:  limiter,
	}
}

// Register mounts the auth routes with the shared middleware chain.
func (h *Handler) Register(r chi.Router) {
	authRouter := chi.NewRouter()
	authRouter.Use(middleware.Recovery(h.logger))
	authRouter.Use(middleware.RequestID)
	authRouter.Use(middleware.ClientMetadata)
	authRouter.Use(middleware.Logger(h.logger))
	authRouter.Use(middleware.Timeout(30 * time.Second))

	authRouter.Get("/auth/login", h.handleLoginPage)
	authRouter.With(h.limiter.Middleware).Get("/auth/login/{provider}", h.handleLoginStart)
	authRouter.Get("/auth/callback", h.handleCallback)
	authRouter.Get("/auth/exchange", h.handleExchange)
	authRouter.Get("/", h.handleHome)

	r.Mount("/", authRouter)
}

func (h *Handler) handleLoginStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := h.sessions.Request(w, r)
	if err != nil {
		h.logger.ErrorContext(ctx, "session load failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	native := device.IsNative(device.Signals{
		SourceParam:   r.URL.Query().Get("source"),
		SessionMarker: sess.NativeClient,
		UserAgent:     requestcontext.UserAgent(ctx),
	})

	start, err := h.auth.BeginLogin(ctx, sess, requestInfo(r), chi.URLParam(r, "provider"), native)
	if err != nil {
		h.logger.ErrorContext(ctx, "login start failed", "error", err)
		http.Redirect(w, r, loginErrorURL(service.FailureLoginProcess, native), http.StatusFound)
		return
	}

	if !start.AlreadyAuthenticated {
		if err := h.sessions.Save(r, sess); err != nil {
			h.logger.ErrorContext(ctx, "session save failed", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}
	http.Redirect(w, r, start.RedirectURL, http.StatusFound)
}

func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := h.sessions.Request(w, r)
	if err != nil {
		h.logger.ErrorContext(ctx, "session load failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	result := h.auth.HandleCallback(ctx, sess, service.CallbackInput{
		Code:            q.Get("code"),
		ErrorParam:      q.Get("error"),
		Source:          q.Get("source"),
		EncodedVerifier: q.Get("v"),
		UserAgent:       requestcontext.UserAgent(ctx),
	})

	// The callback mutates the session either way: verifier cleared, native
	// marker possibly set, principal possibly installed.
	if err := h.sessions.Save(r, sess); err != nil {
		h.logger.ErrorContext(ctx, "session save failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	switch {
	case result.Failure != "":
		http.Redirect(w, r, loginErrorURL(result.Failure, result.Native), http.StatusFound)
	case result.Native:
		h.renderDeepLink(w, r, result.DeepLink)
	default:
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

func (h *Handler) handleExchange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entry, err := h.auth.ExchangeHandover(ctx, r.URL.Query().Get("token"))
	if err != nil {
		http.Redirect(w, r, loginErrorURL(service.FailureInvalidToken, false), http.StatusFound)
		return
	}

	// A fresh session scoped to the WebView's own cookie jar, never the one
	// the Custom Tab may have carried.
	sess, err := h.sessions.Renew(w, r)
	if err != nil {
		h.logger.ErrorContext(ctx, "session creation failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	sess.NativeClient = true
	sess.Install(entry.Principal, entry.Attributes)
	if err := h.sessions.Save(r, sess); err != nil {
		h.logger.ErrorContext(ctx, "session save failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func requestInfo(r *http.Request) service.RequestInfo {
	return service.RequestInfo{
		ForwardedProto: r.Header.Get("X-Forwarded-Proto"),
		ForwardedHost:  r.Header.Get("X-Forwarded-Host"),
		Host:           r.Host,
		TLS:            r.TLS != nil,
	}
}

// loginErrorURL builds the login redirect carrying the failure reason and,
// for native clients, the source marker so the client styles the error state.
func loginErrorURL(reason string, native bool) string {
	q := url.Values{}
	if native {
		q.Set("source", device.SourceApp)
	}
	q.Set("error", reason)
	return "/auth/login?" + q.Encode()
}
