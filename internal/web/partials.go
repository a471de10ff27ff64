package web

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/showdesk/internal/core"
)

//go:generate templ generate

// renderPartial writes an HTML fragment for HTMX swaps.
func renderPartial(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render partial", "path", r.URL.Path, "error", err)
	}
}

func commitClass(res *core.CommitResult) string {
	if res.Failed > 0 {
		return "alert-warning"
	}
	return "alert-success"
}
