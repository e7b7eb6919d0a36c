package service

import (
	"context"
	"encoding/base64"
	"time"

	"mindlog/internal/audit"
	"mindlog/internal/auth/device"
	"mindlog/internal/auth/handover"
	"mindlog/internal/auth/session"
	dErrors "mindlog/pkg/domain-errors"
)

// DeepLinkBase is the scheme the native shell intercepts; the WebView resolves
// it by calling /auth/exchange with the embedded token.
const DeepLinkBase = "mindlog://auth/callback?token="

// Failure reason codes surfaced to the login page.
const (
	FailureAuthFailed     = "auth_failed"
	FailureInvalidSession = "invalid_session"
	FailureLoginProcess   = "login_process_failed"
	FailureInvalidToken   = "invalid_token"
)

// CallbackInput is everything the provider redirect carried.
type CallbackInput struct {
	Code            string
	ErrorParam      string
	Source          string
	EncodedVerifier string // "v" query param, base64url of the verifier (native)
	UserAgent       string
}

// CallbackResult tells the handler how to answer the provider redirect.
type CallbackResult struct {
	// Native reports the resolved client origin, also on failure, so the
	// login page can show the right error styling.
	Native bool
	// DeepLink is set on native success; the handler renders it in a page the
	// native shell opens.
	DeepLink string
	// Failure is a reason code for a login-page redirect; empty on success.
	Failure string
}

// HandleCallback drives one login attempt from provider redirect to either an
// installed web session or a handover token.
func (s *Service) HandleCallback(ctx context.Context, sess *session.Session, in CallbackInput) CallbackResult {
	ctx, span := s.tracer.Start(ctx, "auth.HandleCallback")
	defer span.End()

	native := device.IsNative(device.Signals{
		SourceParam:   in.Source,
		SessionMarker: sess.NativeClient,
		UserAgent:     in.UserAgent,
	})

	if in.ErrorParam != "" || in.Code == "" {
		return s.fail(ctx, native, FailureAuthFailed, in.ErrorParam)
	}

	verifier, ok := s.resolveVerifier(sess, in.EncodedVerifier)
	// The stored verifier is single use; gone after this attempt no matter
	// how the exchange goes.
	sess.PKCEVerifier = ""
	if !ok {
		return s.fail(ctx, native, FailureInvalidSession, "no verifier available")
	}

	start := time.Now()
	tok, err := s.exchange.ExchangeCodeForToken(ctx, in.Code, verifier)
	s.metrics.ExchangeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.ErrorContext(ctx, "token exchange failed", "error", err)
		return s.fail(ctx, native, FailureLoginProcess, "token exchange")
	}

	mat, err := s.materialize(ctx, tok)
	if err != nil {
		s.logger.ErrorContext(ctx, "session materialization failed", "error", err)
		return s.fail(ctx, native, FailureLoginProcess, "materialization")
	}

	s.metrics.LoginsCompleted.WithLabelValues(originLabel(native)).Inc()
	s.audit.Emit(ctx, audit.Event{
		Action: audit.ActionLoginSucceeded,
		UserID: mat.principal.UserID,
		Origin: originLabel(native),
	})

	if native {
		token, err := s.handover.Create(ctx, mat.principal, mat.attrs)
		if err != nil {
			s.logger.ErrorContext(ctx, "handover token creation failed", "error", err)
			return s.fail(ctx, native, FailureLoginProcess, "handover creation")
		}
		s.metrics.HandoversCreated.Inc()
		s.audit.Emit(ctx, audit.Event{
			Action: audit.ActionHandoverCreated,
			UserID: mat.principal.UserID,
			Origin: "native",
		})
		return CallbackResult{Native: true, DeepLink: DeepLinkBase + token}
	}

	sess.Install(mat.principal, mat.attrs)
	if mat.tokenExpiry != nil && mat.tokenExpiry.Before(sess.ExpiresAt) {
		sess.ExpiresAt = *mat.tokenExpiry
	}
	return CallbackResult{Native: false}
}

// ExchangeHandover consumes a handover token for the WebView context. Unknown,
// expired, and replayed tokens are indistinguishable to the caller.
func (s *Service) ExchangeHandover(ctx context.Context, token string) (*handover.Entry, error) {
	ctx, span := s.tracer.Start(ctx, "auth.ExchangeHandover")
	defer span.End()

	if token == "" {
		s.metrics.HandoversRejected.Inc()
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing handover token")
	}

	entry, err := s.handover.Consume(ctx, token)
	if err != nil {
		s.metrics.HandoversRejected.Inc()
		s.audit.Emit(ctx, audit.Event{
			Action: audit.ActionHandoverRejected,
			Reason: "invalid_token",
		})
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid handover token")
	}

	s.metrics.HandoversConsumed.Inc()
	s.audit.Emit(ctx, audit.Event{
		Action: audit.ActionHandoverConsumed,
		UserID: entry.Principal.UserID,
		Origin: "native",
	})
	return entry, nil
}

func (s *Service) resolveVerifier(sess *session.Session, encoded string) (string, bool) {
	// URL-embedded verifier (native path) wins over session state.
	if encoded != "" {
		decoded, err := base64.RawURLEncoding.DecodeString(encoded)
		if err != nil {
			return "", false
		}
		return string(decoded), true
	}
	if sess.PKCEVerifier != "" {
		return sess.PKCEVerifier, true
	}
	return "", false
}

func (s *Service) fail(ctx context.Context, native bool, reason, detail string) CallbackResult {
	s.metrics.LoginsFailed.WithLabelValues(reason).Inc()
	s.audit.Emit(ctx, audit.Event{
		Action: audit.ActionLoginFailed,
		Origin: originLabel(native),
		Reason: reason,
	})
	if detail != "" {
		s.logger.WarnContext(ctx, "login failed",
			"reason", reason,
			"detail", detail,
			"origin", originLabel(native),
		)
	}
	return CallbackResult{Native: native, Failure: reason}
}
