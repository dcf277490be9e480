// Package storagetest holds behaviour suites shared by every storage backend.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/clashoffists/internal/model"
	"github.com/mcoot/clashoffists/internal/storage"
)

// UsersSuite exercises a storage.Users implementation.
// NewStore is called before every test.
type UsersSuite struct {
	suite.Suite
	NewStore func() storage.Users

	store storage.Users
	ctx   context.Context
}

func (s *UsersSuite) SetupTest() {
	s.store = s.NewStore()
	s.ctx = context.Background()
}

func newUser(username, email string) *model.User {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *UsersSuite) TestCreateAndGetUser() {
	u := newUser("alice", "alice@example.com")
	s.Require().NoError(s.store.CreateUser(s.ctx, u))

	byID, err := s.store.GetUserByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("alice", byID.Username)
	s.Equal("alice@example.com", byID.Email)
	s.Equal("hash", byID.PasswordHash)
	s.False(byID.Online)
	s.True(u.CreatedAt.Equal(byID.CreatedAt))

	byName, err := s.store.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(u.ID, byName.ID)

	byEmail, err := s.store.GetUserByEmail(s.ctx, "alice@example.com")
	s.Require().NoError(err)
	s.Equal(u.ID, byEmail.ID)
}

func (s *UsersSuite) TestGetUserNotFound() {
	_, err := s.store.GetUserByID(s.ctx, "missing")
	s.ErrorIs(err, model.ErrUserNotFound)

	_, err = s.store.GetUserByUsername(s.ctx, "missing")
	s.ErrorIs(err, model.ErrUserNotFound)

	_, err = s.store.GetUserByEmail(s.ctx, "missing@example.com")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *UsersSuite) TestCreateUserDuplicateUsername() {
	s.Require().NoError(s.store.CreateUser(s.ctx, newUser("alice", "alice@example.com")))

	err := s.store.CreateUser(s.ctx, newUser("alice", "other@example.com"))
	s.ErrorIs(err, model.ErrUserExists)

	// The rejected email stays free
	_, err = s.store.GetUserByEmail(s.ctx, "other@example.com")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *UsersSuite) TestCreateUserDuplicateEmail() {
	s.Require().NoError(s.store.CreateUser(s.ctx, newUser("alice", "alice@example.com")))

	err := s.store.CreateUser(s.ctx, newUser("bob", "alice@example.com"))
	s.ErrorIs(err, model.ErrUserExists)

	// The rejected username stays free
	_, err = s.store.GetUserByUsername(s.ctx, "bob")
	s.ErrorIs(err, model.ErrUserNotFound)
	s.NoError(s.store.CreateUser(s.ctx, newUser("bob", "bob@example.com")))
}

func (s *UsersSuite) TestSetOnline() {
	u := newUser("alice", "alice@example.com")
	s.Require().NoError(s.store.CreateUser(s.ctx, u))

	s.Require().NoError(s.store.SetOnline(s.ctx, u.ID, true))
	got, err := s.store.GetUserByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.True(got.Online)

	s.Require().NoError(s.store.SetOnline(s.ctx, u.ID, false))
	got, err = s.store.GetUserByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.False(got.Online)
}

func (s *UsersSuite) TestSetOnlineUnknownUser() {
	err := s.store.SetOnline(s.ctx, "missing", true)
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *UsersSuite) TestListOnlineUsersExcludesSelfAndOffline() {
	alice := newUser("alice", "alice@example.com")
	bob := newUser("bob", "bob@example.com")
	carol := newUser("carol", "carol@example.com")
	dave := newUser("dave", "dave@example.com")
	for _, u := range []*model.User{dave, carol, bob, alice} {
		s.Require().NoError(s.store.CreateUser(s.ctx, u))
	}
	for _, u := range []*model.User{alice, carol, dave} {
		s.Require().NoError(s.store.SetOnline(s.ctx, u.ID, true))
	}

	online, err := s.store.ListOnlineUsers(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Require().Len(online, 2)
	s.Equal("carol", online[0].Username)
	s.Equal("dave", online[1].Username)
}

func (s *UsersSuite) TestListOnlineUsersEmpty() {
	online, err := s.store.ListOnlineUsers(s.ctx, "")
	s.Require().NoError(err)
	s.Empty(online)
}

// GamesSuite exercises a storage.Games implementation.
type GamesSuite struct {
	suite.Suite
	NewStore func() storage.Games

	store storage.Games
	ctx   context.Context
}

func (s *GamesSuite) SetupTest() {
	s.store = s.NewStore()
	s.ctx = context.Background()
}

func (s *GamesSuite) TestSaveAndGetGameState() {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	state := model.NewGameState("alice", now)
	state.Apply(model.MoveRock, model.MoveScissors, now)

	s.Require().NoError(s.store.SaveGameState(s.ctx, state))

	got, err := s.store.GetGameState(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(1, got.Round)
	s.Equal(1, got.PlayerScore)
	s.Require().Len(got.History, 1)
	s.Equal(model.OutcomeWin, got.History[0].Result)
}

func (s *GamesSuite) TestGetGameStateNotFound() {
	_, err := s.store.GetGameState(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrGameStateNotFound)
}

func (s *GamesSuite) TestDeleteGameState() {
	s.Require().NoError(s.store.SaveGameState(s.ctx, model.NewGameState("alice", time.Now())))
	s.Require().NoError(s.store.DeleteGameState(s.ctx, "alice"))

	_, err := s.store.GetGameState(s.ctx, "alice")
	s.ErrorIs(err, model.ErrGameStateNotFound)
}

func (s *GamesSuite) TestUpdateGameStateCreatesWhenMissing() {
	got, err := s.store.UpdateGameState(s.ctx, "alice", func(current *model.GameState) (*model.GameState, error) {
		s.Nil(current)
		return model.NewGameState("alice", time.Now()), nil
	})
	s.Require().NoError(err)
	s.Equal("alice", got.Username)

	_, err = s.store.GetGameState(s.ctx, "alice")
	s.NoError(err)
}

func (s *GamesSuite) TestUpdateGameStateErrorLeavesStateUntouched() {
	s.Require().NoError(s.store.SaveGameState(s.ctx, model.NewGameState("alice", time.Now())))
	boom := errors.New("boom")

	_, err := s.store.UpdateGameState(s.ctx, "alice", func(current *model.GameState) (*model.GameState, error) {
		current.Round = 99
		return nil, boom
	})
	s.ErrorIs(err, boom)

	got, err := s.store.GetGameState(s.ctx, "alice")
	s.Require().NoError(err)
	s.Zero(got.Round)
}

func (s *GamesSuite) TestConcurrentUpdatesDoNotLoseRounds() {
	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.UpdateGameState(s.ctx, "alice", func(current *model.GameState) (*model.GameState, error) {
				if current == nil {
					current = model.NewGameState("alice", time.Now())
				}
				current.Apply(model.MoveRock, model.MoveRock, time.Now())
				return current, nil
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		s.Require().NoError(err)
	}

	got, err := s.store.GetGameState(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(n, got.Round)
	s.Len(got.History, n)
}
