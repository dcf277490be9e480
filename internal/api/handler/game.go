package handler

import (
	"net/http"

	"github.com/mcoot/clashoffists/internal/api/middleware"
	"github.com/mcoot/clashoffists/internal/api/request"
	"github.com/mcoot/clashoffists/internal/api/response"
	"github.com/mcoot/clashoffists/internal/services/game"
)

// GameHandler handles single-player game endpoints
type GameHandler struct {
	gameService *game.Service
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameService *game.Service) *GameHandler {
	return &GameHandler{
		gameService: gameService,
	}
}

// Get handles GET /api/v1/game
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	state, err := h.gameService.Get(r.Context(), session.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, game.PayloadFromState(state))
}

// Play handles POST /api/v1/game/play
func (h *GameHandler) Play(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	var req request.PlayRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.gameService.Play(r.Context(), session.Username, req.Choice)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, game.PayloadFromResult(result))
}

// Reset handles POST /api/v1/game/reset
func (h *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	if _, err := h.gameService.Reset(r.Context(), session.Username); err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, game.ResetPayload())
}

// Health handles GET /api/v1/health
func (h *GameHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.HealthResponse{
		Status:   "ok",
		Opponent: h.gameService.Opponent(),
	})
}
