package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/clashoffists/internal/middleware"
	"github.com/mcoot/clashoffists/internal/web/templates/layout"
)

// Recovery creates panic recovery middleware for the web interface.
// It renders an HTML error page, or the JSON error shape for game endpoints.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, webPanicHandler)
}

func webPanicHandler(w http.ResponseWriter, r *http.Request, _ any) {
	if wantsJSON(r) {
		WriteJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_ = layout.ErrorPage("Something went wrong", "Please try again later.").Render(r.Context(), w)
}

func wantsJSON(r *http.Request) bool {
	switch r.URL.Path {
	case "/play", "/reset", "/state":
		return true
	}
	return r.Header.Get("Content-Type") == "application/json"
}
