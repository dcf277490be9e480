package storage

import (
	"context"

	"github.com/mcoot/clashoffists/internal/model"
)

// Users persists registered accounts. Email and username are both unique.
type Users interface {
	// CreateUser inserts u, returning model.ErrUserExists when the email or
	// username is already taken
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	SetOnline(ctx context.Context, id string, online bool) error
	// ListOnlineUsers returns online users other than excludeID, ordered by username
	ListOnlineUsers(ctx context.Context, excludeID string) ([]*model.User, error)
}

// GameUpdateFunc receives the current state (nil when none exists) and
// returns the state to store
type GameUpdateFunc func(current *model.GameState) (*model.GameState, error)

// Games holds transient single-player state keyed by username
type Games interface {
	GetGameState(ctx context.Context, username string) (*model.GameState, error)
	SaveGameState(ctx context.Context, state *model.GameState) error
	DeleteGameState(ctx context.Context, username string) error
	// UpdateGameState applies fn atomically with respect to other updates of
	// the same username and returns the stored result
	UpdateGameState(ctx context.Context, username string, fn GameUpdateFunc) (*model.GameState, error)
}
