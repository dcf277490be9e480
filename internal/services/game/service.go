package game

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mcoot/clashoffists/internal/dependencies/clock"
	"github.com/mcoot/clashoffists/internal/model"
	"github.com/mcoot/clashoffists/internal/services/opponent"
	"github.com/mcoot/clashoffists/internal/storage"
)

const tracerName = "github.com/mcoot/clashoffists/internal/services/game"

// PlayResult is the outcome of one play request
type PlayResult struct {
	State *model.GameState
	Round model.RoundRecord
}

// Service runs single-player games against the computer
type Service struct {
	games    storage.Games
	strategy opponent.Strategy
	clock    clock.Clock
	logger   *slog.Logger
	tracer   trace.Tracer
}

// New creates a new game Service
func New(games storage.Games, strategy opponent.Strategy, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		games:    games,
		strategy: strategy,
		clock:    clk,
		logger:   logger.With(slog.String("component", "game-service")),
		tracer:   otel.Tracer(tracerName),
	}
}

// Opponent returns the name of the configured computer strategy
func (s *Service) Opponent() string {
	return s.strategy.Name()
}

// Get returns the user's state, creating a zeroed one on first access
func (s *Service) Get(ctx context.Context, username string) (*model.GameState, error) {
	ctx, span := s.tracer.Start(ctx, "game.Get", trace.WithAttributes(
		attribute.String("game.username", username),
	))
	defer span.End()

	state, err := s.games.GetGameState(ctx, username)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, model.ErrGameStateNotFound) {
		recordError(span, err)
		return nil, err
	}

	state, err = s.games.UpdateGameState(ctx, username, func(current *model.GameState) (*model.GameState, error) {
		if current != nil {
			return current, nil
		}
		return model.NewGameState(username, s.clock.Now()), nil
	})
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	return state, nil
}

// Play resolves one round for username against the computer
func (s *Service) Play(ctx context.Context, username, choice string) (*PlayResult, error) {
	ctx, span := s.tracer.Start(ctx, "game.Play", trace.WithAttributes(
		attribute.String("game.username", username),
		attribute.String("game.choice", choice),
	))
	defer span.End()

	move, err := model.ParseMove(choice)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	var round model.RoundRecord
	state, err := s.games.UpdateGameState(ctx, username, func(current *model.GameState) (*model.GameState, error) {
		now := s.clock.Now()
		if current == nil {
			current = model.NewGameState(username, now)
		}
		computer := s.strategy.ChooseMove(current)
		round = current.Apply(move, computer, now)
		return current, nil
	})
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("game.round", round.Round),
		attribute.String("game.result", string(round.Result)),
	)
	s.logger.Debug("round played",
		slog.String("username", username),
		slog.Int("round", round.Round),
		slog.String("player_choice", string(round.PlayerChoice)),
		slog.String("computer_choice", string(round.ComputerChoice)),
		slog.String("result", string(round.Result)),
	)

	return &PlayResult{State: state, Round: round}, nil
}

// Reset discards the user's state and starts over at zero
func (s *Service) Reset(ctx context.Context, username string) (*model.GameState, error) {
	ctx, span := s.tracer.Start(ctx, "game.Reset", trace.WithAttributes(
		attribute.String("game.username", username),
	))
	defer span.End()

	state, err := s.games.UpdateGameState(ctx, username, func(*model.GameState) (*model.GameState, error) {
		return model.NewGameState(username, s.clock.Now()), nil
	})
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	s.logger.Debug("game reset", slog.String("username", username))
	return state, nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
