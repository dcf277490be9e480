package handler

import (
	"context"
	"net/http"

	"github.com/mcoot/clashoffists/internal/api/middleware"
	"github.com/mcoot/clashoffists/internal/api/response"
	"github.com/mcoot/clashoffists/internal/model"
)

// OnlineLister is the slice of the lobby service the API reads
type OnlineLister interface {
	OnlinePlayers(ctx context.Context, excludeUserID string) ([]*model.User, error)
}

type LobbyHandler struct {
	lobby OnlineLister
}

func NewLobbyHandler(lobby OnlineLister) *LobbyHandler {
	return &LobbyHandler{lobby: lobby}
}

// Get handles GET /api/v1/lobby. The caller is never listed.
func (h *LobbyHandler) Get(w http.ResponseWriter, r *http.Request) {
	me := middleware.MustGetSession(r.Context()).UserID

	others, err := h.lobby.OnlinePlayers(r.Context(), me)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.LobbyResponseFromUsers(others))
}
