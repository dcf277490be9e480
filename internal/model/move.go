package model

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Move is one of the three hand shapes
type Move string

const (
	MoveRock     Move = "rock"
	MovePaper    Move = "paper"
	MoveScissors Move = "scissors"
)

// Moves lists every valid move in a stable order
var Moves = []Move{MoveRock, MovePaper, MoveScissors}

// beats maps each move to the move it defeats
var beats = map[Move]Move{
	MoveRock:     MoveScissors,
	MoveScissors: MovePaper,
	MovePaper:    MoveRock,
}

var emojis = map[Move]string{
	MoveRock:     "🪨",
	MovePaper:    "📃",
	MoveScissors: "✂️",
}

var titleCaser = cases.Title(language.English)

// ParseMove validates a raw choice. Matching is exact and case-sensitive.
func ParseMove(s string) (Move, error) {
	m := Move(s)
	if _, ok := beats[m]; !ok {
		return "", ErrInvalidMove
	}
	return m, nil
}

// Valid reports whether m is a known move
func (m Move) Valid() bool {
	_, ok := beats[m]
	return ok
}

// Beats reports whether m defeats other
func (m Move) Beats(other Move) bool {
	return beats[m] == other
}

// BeatenBy returns the move that defeats m
func (m Move) BeatenBy() Move {
	for winner, loser := range beats {
		if loser == m {
			return winner
		}
	}
	return ""
}

// Emoji returns the display glyph for the move
func (m Move) Emoji() string {
	return emojis[m]
}

// Label returns the capitalised name, e.g. "Rock"
func (m Move) Label() string {
	return titleCaser.String(string(m))
}

// Outcome is the result of a round from one side's perspective
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
	OutcomeTie  Outcome = "tie"
)

// Resolve decides the round from a's perspective
func Resolve(a, b Move) Outcome {
	switch {
	case a == b:
		return OutcomeTie
	case a.Beats(b):
		return OutcomeWin
	default:
		return OutcomeLose
	}
}

// Invert returns the same round seen from the other side
func (o Outcome) Invert() Outcome {
	switch o {
	case OutcomeWin:
		return OutcomeLose
	case OutcomeLose:
		return OutcomeWin
	default:
		return o
	}
}
