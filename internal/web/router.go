package web

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	sharedmw "github.com/mcoot/clashoffists/internal/middleware"
	"github.com/mcoot/clashoffists/internal/services/auth"
	"github.com/mcoot/clashoffists/internal/services/game"
	"github.com/mcoot/clashoffists/internal/services/lobby"
	"github.com/mcoot/clashoffists/internal/web/handler"
	"github.com/mcoot/clashoffists/internal/web/middleware"
	"github.com/mcoot/clashoffists/internal/web/sse"
	"github.com/mcoot/clashoffists/internal/web/static"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger       *slog.Logger
	AuthService  *auth.Service
	LobbyService *lobby.Service
	GameService  *game.Service
	PresenceHub  *sse.Hub
	Presence     *sse.Broadcaster
	// BaseURL is the public origin used in invite links. Empty uses the request host.
	BaseURL string
	// Static overrides the embedded assets, e.g. with os.DirFS during development
	Static fs.FS
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create middleware
	loggingMiddleware := sharedmw.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	flashMiddleware := middleware.Flash()
	authMiddleware := middleware.Auth(cfg.AuthService)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.AuthService)
	guestOnlyMiddleware := middleware.GuestOnly()

	// Apply global middleware to all routes
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Logger)
	lobbyHandler := handler.NewLobbyHandler(cfg.LobbyService, cfg.PresenceHub, cfg.Presence, cfg.Logger)
	gameHandler := handler.NewGameHandler(cfg.GameService, cfg.Logger)
	inviteHandler := handler.NewInviteHandler(cfg.BaseURL, cfg.Logger)

	// Static files
	assets := cfg.Static
	if assets == nil {
		assets = static.Files
	}
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(assets))))

	// Public routes
	public := r.NewRoute().Subrouter()
	public.Use(flashMiddleware)
	public.Use(optionalAuthMiddleware)
	public.HandleFunc("/", authHandler.Index).Methods(http.MethodGet)
	public.HandleFunc("/invite/qr", inviteHandler.QR).Methods(http.MethodGet)

	// Signup and login are for anonymous visitors only
	guest := public.NewRoute().Subrouter()
	guest.Use(guestOnlyMiddleware)
	guest.HandleFunc("/signup", authHandler.SignupPage).Methods(http.MethodGet)
	guest.HandleFunc("/signup", authHandler.Signup).Methods(http.MethodPost)
	guest.HandleFunc("/login", authHandler.LoginPage).Methods(http.MethodGet)
	guest.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)

	// Protected routes (require auth)
	protected := r.NewRoute().Subrouter()
	protected.Use(flashMiddleware)
	protected.Use(authMiddleware)

	protected.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodGet)
	protected.HandleFunc("/mode", lobbyHandler.Mode).Methods(http.MethodGet)
	protected.HandleFunc("/lobby", lobbyHandler.View).Methods(http.MethodGet)
	protected.HandleFunc("/lobby/events", lobbyHandler.Events).Methods(http.MethodGet)

	// Game routes
	protected.HandleFunc("/game-ai", gameHandler.GameAI).Methods(http.MethodGet)
	protected.HandleFunc("/game", gameHandler.Game).Methods(http.MethodGet)
	protected.HandleFunc("/state", gameHandler.State).Methods(http.MethodGet)
	protected.HandleFunc("/play", gameHandler.Play).Methods(http.MethodPost)
	protected.HandleFunc("/reset", gameHandler.Reset).Methods(http.MethodPost)

	return r
}
