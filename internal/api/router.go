package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"

	"github.com/mcoot/clashoffists/internal/api/handler"
	"github.com/mcoot/clashoffists/internal/api/middleware"
	"github.com/mcoot/clashoffists/internal/services/auth"
	"github.com/mcoot/clashoffists/internal/services/game"
	"github.com/mcoot/clashoffists/internal/services/lobby"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger       *slog.Logger
	AuthService  *auth.Service
	LobbyService *lobby.Service
	GameService  *game.Service
	// CORSOrigins lists origins allowed to call the API from a browser.
	// Empty disables CORS headers entirely.
	CORSOrigins []string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService)
	lobbyHandler := handler.NewLobbyHandler(cfg.LobbyService)
	gameHandler := handler.NewGameHandler(cfg.GameService)
	liveHandler := handler.NewLiveHandler(cfg.GameService, cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Account routes (no auth required)
	api.HandleFunc("/players/signup", playerHandler.Signup).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", gameHandler.Health).Methods(http.MethodGet)

	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/players/logout", playerHandler.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/players/me", playerHandler.GetMe).Methods(http.MethodGet)
	protected.HandleFunc("/lobby", lobbyHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/game", gameHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/game/play", gameHandler.Play).Methods(http.MethodPost)
	protected.HandleFunc("/game/reset", gameHandler.Reset).Methods(http.MethodPost)
	protected.HandleFunc("/game/live", liveHandler.Serve).Methods(http.MethodGet)

	if len(cfg.CORSOrigins) == 0 {
		return r
	}

	// Preflight requests never reach a route, so CORS wraps the whole router
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})(r)
}
