package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"mindlog/internal/auth/pkce"
	"mindlog/internal/auth/session"
)

// RequestInfo carries the request facts needed to rebuild the externally
// visible callback URL when the service sits behind a reverse proxy.
type RequestInfo struct {
	ForwardedProto string // X-Forwarded-Proto header, possibly comma-separated
	ForwardedHost  string // X-Forwarded-Host header, possibly comma-separated
	Host           string // raw Host header
	TLS            bool
}

// LoginStart is the outcome of BeginLogin.
type LoginStart struct {
	// RedirectURL is the provider authorize URL, or the app home when the
	// caller is already authenticated.
	RedirectURL string
	// AlreadyAuthenticated is set when login was short-circuited.
	AlreadyAuthenticated bool
}

// BeginLogin starts the OAuth flow. Already-authenticated sessions are
// short-circuited without generating a PKCE challenge. For native clients the
// verifier is embedded in the callback URL, because the provider's authorize
// page renders in a Custom Tab that does not share cookies with the WebView
// that will receive the callback.
func (s *Service) BeginLogin(ctx context.Context, sess *session.Session, info RequestInfo, provider string, native bool) (LoginStart, error) {
	ctx, span := s.tracer.Start(ctx, "auth.BeginLogin")
	defer span.End()
	_ = ctx

	if sess.Authenticated() {
		return LoginStart{RedirectURL: "/", AlreadyAuthenticated: true}, nil
	}

	challenge, err := pkce.NewChallenge()
	if err != nil {
		return LoginStart{}, fmt.Errorf("begin login: %w", err)
	}

	callback := s.callbackBaseURL(info) + "/auth/callback"
	if native {
		sess.NativeClient = true
		callback += "?source=app&v=" + base64.RawURLEncoding.EncodeToString([]byte(challenge.Verifier))
	} else {
		sess.PKCEVerifier = challenge.Verifier
	}

	prompt := "login"
	if provider == s.accountPicker {
		prompt = "select_account"
	}

	s.metrics.LoginsStarted.WithLabelValues(originLabel(native)).Inc()
	return LoginStart{
		RedirectURL: s.exchange.AuthorizeURL(provider, callback, challenge.Challenge, prompt),
	}, nil
}

// callbackBaseURL prefers the forwarding headers over the Host header over
// the configured base URL, so callback cookies land on the domain the user's
// browser actually sees.
func (s *Service) callbackBaseURL(info RequestInfo) string {
	host := firstForwarded(info.ForwardedHost)
	proto := firstForwarded(info.ForwardedProto)

	if host == "" {
		host = info.Host
	}
	if host == "" {
		return strings.TrimSuffix(s.fallbackBaseURL, "/")
	}
	if proto == "" {
		if info.TLS {
			proto = "https"
		} else {
			proto = "http"
		}
	}
	return proto + "://" + host
}

// firstForwarded takes the first comma-separated value, trimmed. Forwarding
// headers accumulate one entry per proxy hop; the first is the edge.
func firstForwarded(header string) string {
	if header == "" {
		return ""
	}
	if idx := strings.Index(header, ","); idx != -1 {
		header = header[:idx]
	}
	return strings.TrimSpace(header)
}

func originLabel(native bool) string {
	if native {
		return "native"
	}
	return "web"
}
