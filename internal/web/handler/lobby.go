package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/clashoffists/internal/services/lobby"
	"github.com/mcoot/clashoffists/internal/web/middleware"
	"github.com/mcoot/clashoffists/internal/web/sse"
	"github.com/mcoot/clashoffists/internal/web/templates/pages"
)

// LobbyHandler handles the mode selection and lobby pages
type LobbyHandler struct {
	lobbyService *lobby.Service
	hub          *sse.Hub
	presence     *sse.Broadcaster
	logger       *slog.Logger
}

// NewLobbyHandler creates a new LobbyHandler
func NewLobbyHandler(lobbyService *lobby.Service, hub *sse.Hub, presence *sse.Broadcaster, logger *slog.Logger) *LobbyHandler {
	return &LobbyHandler{
		lobbyService: lobbyService,
		hub:          hub,
		presence:     presence,
		logger:       logger.With(slog.String("component", "web-lobby")),
	}
}

// Mode renders the mode selection page
func (h *LobbyHandler) Mode(w http.ResponseWriter, r *http.Request) {
	data := pages.ModeData{PageData: pageData(r, "Choose mode")}
	render(w, r, h.logger, pages.Mode(data))
}

// View renders the lobby with every other online user
func (h *LobbyHandler) View(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	online, err := h.lobbyService.OnlinePlayers(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("list online players failed", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := pages.LobbyData{
		PageData:    pageData(r, "Lobby"),
		OnlineUsers: online,
	}
	render(w, r, h.logger, pages.Lobby(data))
}

// Events streams presence updates to a lobby viewer
func (h *LobbyHandler) Events(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	initial, err := h.presence.InitialMessage(r.Context(), user.ID)
	if err != nil {
		h.logger.Warn("initial presence render failed", slog.String("error", err.Error()))
		initial = nil
	}

	sse.ServeSSE(w, r, h.hub, user.ID, initial)
}
