// Package device answers one question: did this request come from the native
// app shell? The answer drives whether login completes inline (web) or via a
// handover token (native). Detection is best-effort; keep every heuristic
// behind IsNative so they can be replaced without touching the flow.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// SourceApp is the explicit query parameter value the native shell sends.
const SourceApp = "app"

// Signals carries the native-client indicators available on one request.
// The Custom Tab and the WebView callback can present different signals, so
// precedence matters: the explicit parameter is authoritative when present,
// then the remembered session marker, then the User-Agent heuristic.
type Signals struct {
	// SourceParam is the raw "source" query parameter ("" when absent).
	SourceParam string
	// SessionMarker is the remembered native flag from a prior request.
	SessionMarker bool
	// UserAgent is the inbound User-Agent header.
	UserAgent string
}

// IsNative resolves the signals into a single native/web verdict.
func IsNative(sig Signals) bool {
	if sig.SourceParam != "" {
		return sig.SourceParam == SourceApp
	}
	if sig.SessionMarker {
		return true
	}
	return IsWebViewUA(sig.UserAgent)
}

// IsWebViewUA reports whether the User-Agent looks like an embedded WebView
// rather than a full browser. Android WebViews advertise a "wv" token; iOS
// WKWebViews present as mobile Safari engines without the Safari product.
func IsWebViewUA(ua string) bool {
	if ua == "" {
		return false
	}
	parsed := useragent.New(ua)
	if !parsed.Mobile() {
		return false
	}
	if strings.Contains(ua, "; wv)") || strings.Contains(ua, "; wv;") {
		return true
	}
	engine, _ := parsed.Engine()
	if engine == "AppleWebKit" && !strings.Contains(ua, "Safari/") {
		return true
	}
	return false
}
