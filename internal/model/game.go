package model

import "time"

// RoundRecord is one resolved round in a game history
type RoundRecord struct {
	Round          int     `json:"round"`
	PlayerChoice   Move    `json:"player_choice"`
	ComputerChoice Move    `json:"computer_choice"`
	Result         Outcome `json:"result"`
}

// GameState is the transient single-player record for one user
type GameState struct {
	Username      string        `json:"username"`
	Round         int           `json:"round"`
	PlayerScore   int           `json:"player_score"`
	ComputerScore int           `json:"computer_score"`
	History       []RoundRecord `json:"history"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewGameState returns a zeroed state for username
func NewGameState(username string, now time.Time) *GameState {
	return &GameState{
		Username:  username,
		History:   []RoundRecord{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Apply resolves a round, advances the counters and appends history
func (g *GameState) Apply(player, computer Move, now time.Time) RoundRecord {
	result := Resolve(player, computer)

	g.Round++
	switch result {
	case OutcomeWin:
		g.PlayerScore++
	case OutcomeLose:
		g.ComputerScore++
	}

	rec := RoundRecord{
		Round:          g.Round,
		PlayerChoice:   player,
		ComputerChoice: computer,
		Result:         result,
	}
	g.History = append(g.History, rec)
	g.UpdatedAt = now
	return rec
}

// Ties returns the number of drawn rounds
func (g *GameState) Ties() int {
	return g.Round - g.PlayerScore - g.ComputerScore
}

// LastRound returns the most recent round, or nil before the first play
func (g *GameState) LastRound() *RoundRecord {
	if len(g.History) == 0 {
		return nil
	}
	return &g.History[len(g.History)-1]
}

// MoveCounts tallies how often the player chose each move
func (g *GameState) MoveCounts() map[Move]int {
	counts := make(map[Move]int, len(Moves))
	for _, rec := range g.History {
		counts[rec.PlayerChoice]++
	}
	return counts
}

// Clone returns a deep copy safe to hand to other goroutines
func (g *GameState) Clone() *GameState {
	c := *g
	c.History = make([]RoundRecord, len(g.History))
	copy(c.History, g.History)
	return &c
}
