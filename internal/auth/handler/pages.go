package handler

import (
	"html/template"
	"net/http"

	"mindlog/internal/auth/models"
)

// The two HTML surfaces this service owns: the login page and the deep-link
// page the Custom Tab renders for the native shell. Everything else is the
// client's problem.

var deepLinkTmpl = template.Must(template.New("deeplink").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Returning to mindlog…</title>
</head>
<body>
<p>Login complete. Returning to the app…</p>
<p><a id="open-app" href="{{.DeepLink}}">Open mindlog</a></p>
<script>window.location.href = {{.DeepLink}};</script>
</body>
</html>
`))

var loginTmpl = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Sign in to mindlog</title>
</head>
<body>
<h1>mindlog</h1>
{{if .Error}}<p class="error" data-error="{{.Error}}">Sign-in failed ({{.Error}}). Please try again.</p>{{end}}
<p><a href="/auth/login/google{{.SourceQuery}}">Continue with Google</a></p>
<p><a href="/auth/login/apple{{.SourceQuery}}">Continue with Apple</a></p>
</body>
</html>
`))

func (h *Handler) renderDeepLink(w http.ResponseWriter, r *http.Request, deepLink string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := deepLinkTmpl.Execute(w, map[string]string{"DeepLink": deepLink}); err != nil {
		h.logger.ErrorContext(r.Context(), "deep link render failed", "error", err)
	}
}

func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sourceQuery := ""
	if q.Get("source") != "" {
		sourceQuery = "?source=" + template.URLQueryEscaper(q.Get("source"))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := loginTmpl.Execute(w, map[string]string{
		"Error":       q.Get("error"),
		"SourceQuery": sourceQuery,
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "login page render failed", "error", err)
	}
}

// handleHome is the minimal authenticated landing surface; the real journal
// UI lives with the client.
func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Request(w, r)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "session load failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !sess.Authenticated() {
		http.Redirect(w, r, "/auth/login", http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	name := template.HTMLEscapeString(sess.Attributes[models.AttrUserName])
	_, _ = w.Write([]byte("<!DOCTYPE html><html><body><p>Welcome back, " + name + ".</p></body></html>"))
}
