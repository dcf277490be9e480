package opponent

import (
	"github.com/mcoot/clashoffists/internal/dependencies/random"
	"github.com/mcoot/clashoffists/internal/model"
)

// CounterStrategy plays whatever beats the player's most frequent move.
// With no history, or when the most frequent move is tied, it plays randomly.
type CounterStrategy struct {
	fallback *RandomStrategy
}

// NewCounterStrategy creates a new CounterStrategy
func NewCounterStrategy(rnd random.Random) *CounterStrategy {
	return &CounterStrategy{fallback: NewRandomStrategy(rnd)}
}

func (s *CounterStrategy) Name() string {
	return model.OpponentCounter
}

func (s *CounterStrategy) ChooseMove(state *model.GameState) model.Move {
	if state == nil || len(state.History) == 0 {
		return s.fallback.ChooseMove(state)
	}

	counts := state.MoveCounts()
	var favourite model.Move
	best, tied := 0, false
	for _, m := range model.Moves {
		switch n := counts[m]; {
		case n > best:
			favourite, best, tied = m, n, false
		case n == best:
			tied = true
		}
	}
	if tied {
		return s.fallback.ChooseMove(state)
	}
	return favourite.BeatenBy()
}
