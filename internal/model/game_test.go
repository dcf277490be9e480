package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewGameStateIsZeroed(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	g := NewGameState("alice", now)

	assert.Equal(t, "alice", g.Username)
	assert.Zero(t, g.Round)
	assert.Zero(t, g.PlayerScore)
	assert.Zero(t, g.ComputerScore)
	assert.NotNil(t, g.History)
	assert.Empty(t, g.History)
	assert.Nil(t, g.LastRound())
}

func TestApplyUpdatesCounters(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	g := NewGameState("alice", now)

	rec := g.Apply(MoveRock, MoveScissors, now)
	assert.Equal(t, OutcomeWin, rec.Result)
	assert.Equal(t, 1, rec.Round)

	g.Apply(MoveRock, MovePaper, now)
	g.Apply(MovePaper, MovePaper, now)

	assert.Equal(t, 3, g.Round)
	assert.Equal(t, 1, g.PlayerScore)
	assert.Equal(t, 1, g.ComputerScore)
	assert.Equal(t, 1, g.Ties())
	assert.Len(t, g.History, 3)
	assert.Equal(t, OutcomeTie, g.LastRound().Result)
}

func TestScoresAlwaysSumToRound(t *testing.T) {
	now := time.Now()
	g := NewGameState("alice", now)

	for _, p := range Moves {
		for _, c := range Moves {
			g.Apply(p, c, now)
			assert.Equal(t, g.Round, g.PlayerScore+g.ComputerScore+g.Ties())
		}
	}
	assert.Equal(t, 9, g.Round)
	assert.Equal(t, 3, g.Ties())
}

func TestCloneIsIndependent(t *testing.T) {
	now := time.Now()
	g := NewGameState("alice", now)
	g.Apply(MoveRock, MoveRock, now)

	c := g.Clone()
	c.Apply(MovePaper, MoveRock, now)

	assert.Len(t, g.History, 1)
	assert.Len(t, c.History, 2)
}

func TestMoveCounts(t *testing.T) {
	now := time.Now()
	g := NewGameState("alice", now)
	g.Apply(MoveRock, MovePaper, now)
	g.Apply(MoveRock, MoveScissors, now)
	g.Apply(MovePaper, MoveScissors, now)

	counts := g.MoveCounts()
	assert.Equal(t, 2, counts[MoveRock])
	assert.Equal(t, 1, counts[MovePaper])
	assert.Equal(t, 0, counts[MoveScissors])
}
