package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/clashoffists/internal/dependencies/mocks"
	"github.com/mcoot/clashoffists/internal/model"
	"github.com/mcoot/clashoffists/internal/storage/memory"
	"github.com/mcoot/clashoffists/internal/testutil"
)

type recordingListener struct {
	mu     sync.Mutex
	events []model.Event
}

func (l *recordingListener) PresenceChanged(event model.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *recordingListener) types() []model.EventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.EventType, len(l.events))
	for i, e := range l.events {
		out[i] = e.Type
	}
	return out
}

type ServiceSuite struct {
	suite.Suite
	storage  *memory.Storage
	clock    *mocks.MockClock
	listener *recordingListener
	service  *Service
	ctx      context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.listener = &recordingListener{}
	s.service = New(s.storage, s.clock, Config{
		SessionDuration: time.Hour,
		SecretKey:       "test-secret",
		BcryptCost:      bcrypt.MinCost,
	}, s.listener, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) signup(username string) *model.User {
	user, err := s.service.Signup(s.ctx, username+"@example.com", username, "password123")
	s.Require().NoError(err)
	return user
}

// Signup tests

func (s *ServiceSuite) TestSignupPersistsHashedUser() {
	user := s.signup("alice")

	stored, err := s.storage.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(user.ID, stored.ID)
	s.Equal("alice@example.com", stored.Email)
	s.NotEmpty(stored.PasswordHash)
	s.NotEqual("password123", stored.PasswordHash)
}

func (s *ServiceSuite) TestSignupDoesNotLogIn() {
	user := s.signup("alice")

	s.False(user.Online)
	s.Equal(0, s.service.SessionCount())
	s.Empty(s.listener.types())
}

func (s *ServiceSuite) TestSignupDuplicateUsername() {
	s.signup("alice")

	_, err := s.service.Signup(s.ctx, "other@example.com", "alice", "password123")
	s.ErrorIs(err, ErrUserExists)
}

func (s *ServiceSuite) TestSignupDuplicateEmail() {
	s.signup("alice")

	_, err := s.service.Signup(s.ctx, "alice@example.com", "alice2", "password123")
	s.ErrorIs(err, ErrUserExists)
	s.ErrorIs(err, model.ErrUserExists)
}

func (s *ServiceSuite) TestSignupMissingFields() {
	_, err := s.service.Signup(s.ctx, "", "alice", "password123")
	s.ErrorIs(err, ErrMissingFields)

	_, err = s.service.Signup(s.ctx, "a@example.com", "   ", "password123")
	s.ErrorIs(err, ErrMissingFields)

	_, err = s.service.Signup(s.ctx, "a@example.com", "alice", "")
	s.ErrorIs(err, ErrMissingFields)
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	user := s.signup("alice")

	session, err := s.service.Login(s.ctx, "alice", "password123")
	s.Require().NoError(err)
	s.NotEmpty(session.Token)
	s.Equal(user.ID, session.UserID)
	s.Equal("alice", session.Username)
	s.Equal(s.clock.Now().Add(time.Hour), session.ExpiresAt)
}

func (s *ServiceSuite) TestLoginMarksOnline() {
	user := s.signup("alice")

	_, err := s.service.Login(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	stored, _ := s.storage.GetUserByID(s.ctx, user.ID)
	s.True(stored.Online)
	s.Equal([]model.EventType{model.EventUserOnline}, s.listener.types())
}

func (s *ServiceSuite) TestLoginWrongPassword() {
	s.signup("alice")

	_, err := s.service.Login(s.ctx, "alice", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)
	s.Empty(s.listener.types())
}

func (s *ServiceSuite) TestLoginUnknownUser() {
	_, err := s.service.Login(s.ctx, "nobody", "password123")
	s.ErrorIs(err, ErrInvalidCredentials)
}

// Session tests

func (s *ServiceSuite) TestValidateSession() {
	s.signup("alice")
	session, _ := s.service.Login(s.ctx, "alice", "password123")

	validated, err := s.service.ValidateSession(session.Token)
	s.Require().NoError(err)
	s.Equal(session.ID, validated.ID)
}

func (s *ServiceSuite) TestValidateSessionRejectsGarbage() {
	_, err := s.service.ValidateSession("")
	s.ErrorIs(err, ErrInvalidSession)

	_, err = s.service.ValidateSession("not-a-token")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestValidateSessionRejectsOtherSecret() {
	s.signup("alice")
	other := New(s.storage, s.clock, Config{SecretKey: "different"}, nil, testutil.NopLogger())
	session, err := other.Login(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	_, err = s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestValidateSessionExpires() {
	s.signup("alice")
	session, _ := s.service.Login(s.ctx, "alice", "password123")

	s.clock.Advance(time.Hour + time.Second)

	_, err := s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestExpiredSessionKeptUntilCleanup() {
	user := s.signup("alice")
	session, err := s.service.Login(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)

	_, err = s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
	s.Equal(1, s.service.SessionCount())
	stored, _ := s.storage.GetUserByID(s.ctx, user.ID)
	s.True(stored.Online)

	count, err := s.service.CleanExpiredSessions(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
	s.Equal(0, s.service.SessionCount())

	stored, _ = s.storage.GetUserByID(s.ctx, user.ID)
	s.False(stored.Online)
	s.Equal([]model.EventType{model.EventUserOnline, model.EventUserOffline}, s.listener.types())
}

func (s *ServiceSuite) TestGetUser() {
	user := s.signup("alice")
	session, _ := s.service.Login(s.ctx, "alice", "password123")

	got, err := s.service.GetUser(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal(user.ID, got.ID)
}

// Logout tests

func (s *ServiceSuite) TestLogoutMarksOffline() {
	user := s.signup("alice")
	session, _ := s.service.Login(s.ctx, "alice", "password123")

	s.Require().NoError(s.service.Logout(s.ctx, session.Token))

	stored, _ := s.storage.GetUserByID(s.ctx, user.ID)
	s.False(stored.Online)
	s.Equal([]model.EventType{model.EventUserOnline, model.EventUserOffline}, s.listener.types())

	_, err := s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestLogoutKeepsOnlineWithOtherSession() {
	user := s.signup("alice")
	first, _ := s.service.Login(s.ctx, "alice", "password123")
	second, _ := s.service.Login(s.ctx, "alice", "password123")

	s.Require().NoError(s.service.Logout(s.ctx, first.Token))

	stored, _ := s.storage.GetUserByID(s.ctx, user.ID)
	s.True(stored.Online)

	_, err := s.service.ValidateSession(second.Token)
	s.NoError(err)
}

func (s *ServiceSuite) TestLogoutInvalidToken() {
	err := s.service.Logout(s.ctx, "bogus")
	s.ErrorIs(err, ErrInvalidSession)
}

// CleanExpiredSessions tests

func (s *ServiceSuite) TestCleanExpiredSessions() {
	alice := s.signup("alice")
	s.signup("bob")
	_, _ = s.service.Login(s.ctx, "alice", "password123")

	s.clock.Advance(30 * time.Minute)
	bobSession, _ := s.service.Login(s.ctx, "bob", "password123")

	s.clock.Advance(45 * time.Minute)
	count, err := s.service.CleanExpiredSessions(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
	s.Equal(1, s.service.SessionCount())

	stored, _ := s.storage.GetUserByID(s.ctx, alice.ID)
	s.False(stored.Online)

	_, err = s.service.ValidateSession(bobSession.Token)
	s.NoError(err)
}

func (s *ServiceSuite) TestCleanExpiredSessionsNothingExpired() {
	s.signup("alice")
	_, _ = s.service.Login(s.ctx, "alice", "password123")

	count, err := s.service.CleanExpiredSessions(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, count)
	s.Equal(1, s.service.SessionCount())
}
