package response

import (
	"time"

	"github.com/mcoot/clashoffists/internal/model"
	"github.com/mcoot/clashoffists/internal/services/auth"
	"github.com/mcoot/clashoffists/internal/services/game"
)

// User represents an account in API responses. The password hash never leaves the server.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Online    bool      `json:"online"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	return User{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Online:    u.Online,
		CreatedAt: u.CreatedAt,
	}
}

// AuthResponse is the response for the login endpoint
type AuthResponse struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		UserID:       s.UserID,
		Username:     s.Username,
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// LobbyPlayer is one online user in the lobby listing
type LobbyPlayer struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// LobbyResponse lists online users other than the caller
type LobbyResponse struct {
	Count   int           `json:"count"`
	Players []LobbyPlayer `json:"players"`
}

// LobbyResponseFromUsers builds a LobbyResponse
func LobbyResponseFromUsers(users []*model.User) LobbyResponse {
	resp := LobbyResponse{Players: make([]LobbyPlayer, 0, len(users))}
	for _, u := range users {
		resp.Players = append(resp.Players, LobbyPlayer{ID: u.ID, Username: u.Username})
	}
	resp.Count = len(resp.Players)
	return resp
}

// Live message types sent by the server
const (
	LiveTypeState = "state"
	LiveTypeError = "error"
)

// LiveState is the play payload tagged for the websocket stream
type LiveState struct {
	Type string `json:"type"`
	game.Payload
}

// LiveError reports a rejected websocket frame
type LiveError struct {
	Type  string `json:"type"`
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status   string `json:"status"`
	Opponent string `json:"opponent"`
}
