package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/clashoffists/internal/api/apierr"
	"github.com/mcoot/clashoffists/internal/middleware"
)

// Recovery turns handler panics into the JSON error envelope
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger.With(slog.String("component", "api")), writePanic)
}

func writePanic(w http.ResponseWriter, r *http.Request, _ any) {
	// A live socket has already been hijacked, there is no response left to write
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return
	}
	apierr.WriteError(w, apierr.NewInternalError())
}
