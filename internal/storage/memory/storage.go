package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/clashoffists/internal/model"
	"github.com/mcoot/clashoffists/internal/storage"
)

// Storage is an in-memory implementation of the storage interfaces
type Storage struct {
	mu sync.RWMutex

	users         map[string]*model.User
	usernameIndex map[string]string
	emailIndex    map[string]string
	games         map[string]*model.GameState

	// gameLocks serialises read-modify-write cycles per username
	gameLocks map[string]*sync.Mutex
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:         make(map[string]*model.User),
		usernameIndex: make(map[string]string),
		emailIndex:    make(map[string]string),
		games:         make(map[string]*model.GameState),
		gameLocks:     make(map[string]*sync.Mutex),
	}
}

// Ensure Storage implements the interfaces
var (
	_ storage.Users = (*Storage)(nil)
	_ storage.Games = (*Storage)(nil)
)

// User operations

func (s *Storage) CreateUser(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.usernameIndex[u.Username]; ok {
		return model.ErrUserExists
	}
	if _, ok := s.emailIndex[u.Email]; ok {
		return model.ErrUserExists
	}
	stored := *u
	s.users[u.ID] = &stored
	s.usernameIndex[u.Username] = u.ID
	s.emailIndex[u.Email] = u.ID
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	id, ok := s.usernameIndex[username]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return s.GetUserByID(ctx, id)
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	id, ok := s.emailIndex[email]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return s.GetUserByID(ctx, id)
}

func (s *Storage) SetOnline(ctx context.Context, id string, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.Online = online
	return nil
}

func (s *Storage) ListOnlineUsers(ctx context.Context, excludeID string) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*model.User, 0)
	for id, u := range s.users {
		if !u.Online || id == excludeID {
			continue
		}
		c := *u
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Username < result[j].Username
	})
	return result, nil
}

// Game state operations

func (s *Storage) GetGameState(ctx context.Context, username string) (*model.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.games[username]
	if !ok {
		return nil, model.ErrGameStateNotFound
	}
	return state.Clone(), nil
}

func (s *Storage) SaveGameState(ctx context.Context, state *model.GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[state.Username] = state.Clone()
	return nil
}

func (s *Storage) DeleteGameState(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, username)
	return nil
}

func (s *Storage) UpdateGameState(ctx context.Context, username string, fn storage.GameUpdateFunc) (*model.GameState, error) {
	lock := s.gameLock(username)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	var current *model.GameState
	if existing, ok := s.games[username]; ok {
		current = existing.Clone()
	}
	s.mu.RUnlock()

	next, err := fn(current)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.games[username] = next.Clone()
	s.mu.Unlock()

	return next, nil
}

func (s *Storage) gameLock(username string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.gameLocks[username]
	if !ok {
		lock = &sync.Mutex{}
		s.gameLocks[username] = lock
	}
	return lock
}
