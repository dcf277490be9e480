package lobby

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mcoot/clashoffists/internal/model"
	"github.com/mcoot/clashoffists/internal/storage"
)

// PresenceFunc receives presence changes
type PresenceFunc func(event model.Event)

// Service lists online players and fans presence changes out to subscribers
type Service struct {
	users  storage.Users
	logger *slog.Logger

	mu          sync.RWMutex
	nextID      int
	subscribers map[int]PresenceFunc
}

// New creates a new lobby Service
func New(users storage.Users, logger *slog.Logger) *Service {
	return &Service{
		users:       users,
		logger:      logger.With(slog.String("component", "lobby-service")),
		subscribers: make(map[int]PresenceFunc),
	}
}

// OnlinePlayers returns online users other than excludeUserID, ordered by username
func (s *Service) OnlinePlayers(ctx context.Context, excludeUserID string) ([]*model.User, error) {
	return s.users.ListOnlineUsers(ctx, excludeUserID)
}

// Subscribe registers fn for presence changes. The returned func removes it.
func (s *Service) Subscribe(fn PresenceFunc) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// PresenceChanged delivers event to every subscriber
func (s *Service) PresenceChanged(event model.Event) {
	s.mu.RLock()
	subs := make([]PresenceFunc, 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	s.logger.Debug("presence changed",
		slog.String("user_id", event.UserID),
		slog.Bool("online", event.Online()),
		slog.Int("subscribers", len(subs)),
	)

	for _, fn := range subs {
		fn(event)
	}
}
