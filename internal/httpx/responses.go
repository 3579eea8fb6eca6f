package httpx

import (
	"encoding/json"
	"html/template"
	"net/http"
)

var errorPage = template.Must(template.New("error").Parse(`<!doctype html>
<html lang="en"><head><meta charset="utf-8"><title>Bookshelf</title></head>
<body><main class="error-page"><h1>{{.Status}}</h1><p>{{.Message}}</p>{{if .RequestID}}<p class="request-id">Request {{.RequestID}}</p>{{end}}<p><a href="/">Back to search</a></p></main></body></html>
`))

// HTML writes a complete HTML document.
func HTML(w http.ResponseWriter, statusCode int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

// HTMLError writes a minimal standalone error page. It is for failures outside
// the page renderer (panics, oversize bodies, rate limiting).
func HTMLError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)
	_ = errorPage.Execute(w, map[string]any{
		"Status":    statusCode,
		"Message":   message,
		"RequestID": RequestIDFrom(r),
	})
}

// SeeOther redirects a form post to a page.
func SeeOther(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// JSON is used by the health endpoints.
func JSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
