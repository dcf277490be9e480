package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/clashoffists/internal/dependencies/clock"
	"github.com/mcoot/clashoffists/internal/model"
	"github.com/mcoot/clashoffists/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrMissingFields      = errors.New("email, username and password are required")
	ErrUserExists         = model.ErrUserExists
)

// Session represents an authenticated session
type Session struct {
	ID        string
	Token     string
	UserID    string
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Claims is the signed payload of a session token
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// PresenceListener is told when a user goes online or offline
type PresenceListener interface {
	PresenceChanged(event model.Event)
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration
	// SecretKey signs session tokens
	SecretKey string
	// BcryptCost is the password hashing cost
	BcryptCost int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
		SecretKey:       "dev_secret_key",
		BcryptCost:      bcrypt.DefaultCost,
	}
}

// Service handles signup, login and session management
type Service struct {
	users    storage.Users
	clock    clock.Clock
	logger   *slog.Logger
	presence PresenceListener

	mu       sync.RWMutex
	sessions map[string]*Session

	sessionDuration time.Duration
	secret          []byte
	bcryptCost      int
}

// New creates a new auth Service. presence may be nil.
func New(users storage.Users, clk clock.Clock, cfg Config, presence PresenceListener, logger *slog.Logger) *Service {
	defaults := DefaultConfig()
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = defaults.SessionDuration
	}
	if cfg.SecretKey == "" {
		cfg.SecretKey = defaults.SecretKey
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = defaults.BcryptCost
	}
	return &Service{
		users:           users,
		clock:           clk,
		logger:          logger.With(slog.String("component", "auth-service")),
		presence:        presence,
		sessions:        make(map[string]*Session),
		sessionDuration: cfg.SessionDuration,
		secret:          []byte(cfg.SecretKey),
		bcryptCost:      cfg.BcryptCost,
	}
}

// Signup creates an account. The new user is not logged in.
func (s *Service) Signup(ctx context.Context, email, username, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" || username == "" || password == "" {
		return nil, ErrMissingFields
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return nil, err
	}
	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The store re-checks uniqueness for concurrent signups
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Login authenticates a user, marks them online and creates a session
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session, err := s.createSession(user)
	if err != nil {
		return nil, err
	}

	if err := s.users.SetOnline(ctx, user.ID, true); err != nil {
		s.InvalidateSession(session.Token)
		return nil, err
	}
	s.notify(true, user)

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	return session, nil
}

// Logout ends the session. The user goes offline once no session remains.
func (s *Service) Logout(ctx context.Context, token string) error {
	session, err := s.ValidateSession(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.sessions, session.ID)
	remaining := s.countSessionsLocked(session.UserID)
	s.mu.Unlock()

	if remaining > 0 {
		return nil
	}
	if err := s.users.SetOnline(ctx, session.UserID, false); err != nil {
		return err
	}
	s.notify(false, &model.User{ID: session.UserID, Username: session.Username})

	s.logger.Info("user logged out", slog.String("user_id", session.UserID))
	return nil
}

// ValidateSession checks the token signature, expiry and revocation state
func (s *Service) ValidateSession(token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}

	// The exp claim has already been checked against the clock. Expired
	// records stay until CleanExpiredSessions takes their user offline.
	s.mu.RLock()
	session, ok := s.sessions[claims.ID]
	s.mu.RUnlock()
	if !ok || session.Token != token {
		return nil, ErrInvalidSession
	}

	return session, nil
}

// InvalidateSession removes a session without touching presence
func (s *Service) InvalidateSession(token string) {
	claims := &Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return
	}
	s.mu.Lock()
	delete(s.sessions, claims.ID)
	s.mu.Unlock()
}

// GetUser returns the user behind a session token
func (s *Service) GetUser(ctx context.Context, token string) (*model.User, error) {
	session, err := s.ValidateSession(token)
	if err != nil {
		return nil, err
	}
	return s.users.GetUserByID(ctx, session.UserID)
}

// CleanExpiredSessions drops expired sessions and marks users with no
// remaining session offline. It returns how many users went offline.
func (s *Service) CleanExpiredSessions(ctx context.Context) (int, error) {
	now := s.clock.Now()

	s.mu.Lock()
	expired := make(map[string]string)
	for id, session := range s.sessions {
		if !now.Before(session.ExpiresAt) {
			expired[session.UserID] = session.Username
			delete(s.sessions, id)
		}
	}
	var offline []*model.User
	for userID, username := range expired {
		if s.countSessionsLocked(userID) == 0 {
			offline = append(offline, &model.User{ID: userID, Username: username})
		}
	}
	s.mu.Unlock()

	var errs []error
	count := 0
	for _, u := range offline {
		if err := s.users.SetOnline(ctx, u.ID, false); err != nil {
			errs = append(errs, fmt.Errorf("set %s offline: %w", u.ID, err))
			continue
		}
		s.notify(false, u)
		count++
	}

	if count > 0 {
		s.logger.Info("expired sessions cleaned", slog.Int("users_offline", count))
	}
	return count, errors.Join(errs...)
}

// SessionCount returns the number of tracked sessions
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// createSession signs a token for user and records it
func (s *Service) createSession(user *model.User) (*Session, error) {
	now := s.clock.Now()
	sessionID := uuid.New().String()
	expiresAt := now.Add(s.sessionDuration)

	claims := &Claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	session := &Session{
		ID:        sessionID,
		Token:     token,
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}

	s.mu.Lock()
	s.sessions[sessionID] = session
	s.mu.Unlock()

	return session, nil
}

func (s *Service) countSessionsLocked(userID string) int {
	n := 0
	for _, session := range s.sessions {
		if session.UserID == userID {
			n++
		}
	}
	return n
}

func (s *Service) notify(online bool, u *model.User) {
	if s.presence == nil {
		return
	}
	s.presence.PresenceChanged(model.NewPresenceEvent(online, u, s.clock.Now()))
}
