package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSameMoveIsTie(t *testing.T) {
	for _, m := range Moves {
		assert.Equal(t, OutcomeTie, Resolve(m, m), "move %s", m)
	}
}

func TestResolveBeatsTable(t *testing.T) {
	tests := []struct {
		winner Move
		loser  Move
	}{
		{MoveRock, MoveScissors},
		{MoveScissors, MovePaper},
		{MovePaper, MoveRock},
	}

	for _, tt := range tests {
		t.Run(string(tt.winner)+"_vs_"+string(tt.loser), func(t *testing.T) {
			assert.Equal(t, OutcomeWin, Resolve(tt.winner, tt.loser))
			assert.Equal(t, OutcomeLose, Resolve(tt.loser, tt.winner))
		})
	}
}

func TestResolveIsAntisymmetric(t *testing.T) {
	for _, a := range Moves {
		for _, b := range Moves {
			assert.Equal(t, Resolve(a, b), Resolve(b, a).Invert(), "%s vs %s", a, b)
		}
	}
}

func TestParseMove(t *testing.T) {
	for _, m := range Moves {
		parsed, err := ParseMove(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}

	for _, bad := range []string{"", "Rock", "lizard", "spock", " rock"} {
		_, err := ParseMove(bad)
		assert.ErrorIs(t, err, ErrInvalidMove, "input %q", bad)
	}
}

func TestMoveEmojiAndLabel(t *testing.T) {
	assert.Equal(t, "🪨", MoveRock.Emoji())
	assert.Equal(t, "📃", MovePaper.Emoji())
	assert.Equal(t, "✂️", MoveScissors.Emoji())

	assert.Equal(t, "Rock", MoveRock.Label())
	assert.Equal(t, "Scissors", MoveScissors.Label())
}

func TestBeatenBy(t *testing.T) {
	assert.Equal(t, MovePaper, MoveRock.BeatenBy())
	assert.Equal(t, MoveRock, MoveScissors.BeatenBy())
	assert.Equal(t, MoveScissors, MovePaper.BeatenBy())
}
