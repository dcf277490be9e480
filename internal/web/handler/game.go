package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/clashoffists/internal/api/response"
	"github.com/mcoot/clashoffists/internal/model"
	"github.com/mcoot/clashoffists/internal/services/game"
	"github.com/mcoot/clashoffists/internal/web/middleware"
	"github.com/mcoot/clashoffists/internal/web/templates/pages"
)

// GameHandler serves the game pages and the JSON endpoints their script calls
type GameHandler struct {
	gameService *game.Service
	logger      *slog.Logger
}

// NewGameHandler creates a new GameHandler
func NewGameHandler(gameService *game.Service, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		gameService: gameService,
		logger:      logger.With(slog.String("component", "web-game")),
	}
}

// maxPlayBodyBytes caps the /play body; a choice is a single short string
const maxPlayBodyBytes = 4 << 10

type playRequest struct {
	Choice string `json:"choice"`
}

// GameAI renders the single-player page, creating the state on first visit
func (h *GameHandler) GameAI(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	state, err := h.gameService.Get(r.Context(), user.Username)
	if err != nil {
		h.logger.Error("load game state failed", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := pages.GameAIData{
		PageData: pageData(r, "Play the computer"),
		State:    state,
		Opponent: h.gameService.Opponent(),
	}
	render(w, r, h.logger, pages.GameAI(data))
}

// Game renders the multiplayer placeholder
func (h *GameHandler) Game(w http.ResponseWriter, r *http.Request) {
	data := pages.GameData{PageData: pageData(r, "Multiplayer")}
	render(w, r, h.logger, pages.Game(data))
}

// State returns the current payload without playing
func (h *GameHandler) State(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	state, err := h.gameService.Get(r.Context(), user.Username)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, game.PayloadFromState(state))
}

// Play resolves one round against the computer
func (h *GameHandler) Play(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var req playRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPlayBodyBytes)).Decode(&req); err != nil {
		middleware.WriteJSONError(w, http.StatusBadRequest, "Invalid choice")
		return
	}

	result, err := h.gameService.Play(r.Context(), user.Username, req.Choice)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, game.PayloadFromResult(result))
}

// Reset zeroes the user's scores and history
func (h *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	if _, err := h.gameService.Reset(r.Context(), user.Username); err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, game.ResetPayload())
}

func (h *GameHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidMove):
		middleware.WriteJSONError(w, http.StatusBadRequest, "Invalid choice")
	case errors.Is(err, model.ErrConcurrentUpdate):
		middleware.WriteJSONError(w, http.StatusConflict, "Game is busy, try again")
	default:
		h.logger.Error("game request failed", slog.String("error", err.Error()))
		middleware.WriteJSONError(w, http.StatusInternalServerError, "Internal server error")
	}
}
