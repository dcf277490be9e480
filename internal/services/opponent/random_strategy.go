package opponent

import (
	"github.com/mcoot/clashoffists/internal/dependencies/random"
	"github.com/mcoot/clashoffists/internal/model"
)

// RandomStrategy picks uniformly from the three moves
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

func (s *RandomStrategy) Name() string {
	return model.OpponentRandom
}

// ChooseMove ignores history
func (s *RandomStrategy) ChooseMove(_ *model.GameState) model.Move {
	return model.Moves[s.random.Intn(len(model.Moves))]
}
