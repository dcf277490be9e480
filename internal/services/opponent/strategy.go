package opponent

import (
	"fmt"

	"github.com/mcoot/clashoffists/internal/dependencies/random"
	"github.com/mcoot/clashoffists/internal/model"
)

// Strategy defines how the computer picks its move for the next round
type Strategy interface {
	// Name returns the configured strategy name
	Name() string
	// ChooseMove selects a move. state holds the rounds played so far.
	ChooseMove(state *model.GameState) model.Move
}

// New returns the strategy registered under name
func New(name string, rnd random.Random) (Strategy, error) {
	switch name {
	case model.OpponentRandom, "":
		return NewRandomStrategy(rnd), nil
	case model.OpponentCounter:
		return NewCounterStrategy(rnd), nil
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownOpponent, name)
	}
}
