package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/clashoffists/internal/middleware"
)

// Logging tags request lines with the api component
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("component", "api")))
}
