package pages

import (
	"github.com/mcoot/clashoffists/internal/model"
	"github.com/mcoot/clashoffists/internal/web/templates/layout"
)

//go:generate templ generate

// SignupData holds data for the signup page
type SignupData struct {
	layout.PageData
}

// LoginData holds data for the login page
type LoginData struct {
	layout.PageData
	// Next is a local path to return to after login
	Next string
}

// ModeData holds data for the mode selection page
type ModeData struct {
	layout.PageData
}

// LobbyData holds data for the lobby page
type LobbyData struct {
	layout.PageData
	// OnlineUsers excludes the viewer
	OnlineUsers []*model.User
}

// GameAIData holds data for the single-player page
type GameAIData struct {
	layout.PageData
	State    *model.GameState
	Opponent string
}

// GameData holds data for the multiplayer page
type GameData struct {
	layout.PageData
}

type lastRoundView struct {
	PlayerChoice   string
	ComputerChoice string
	PlayerEmoji    string
	ComputerEmoji  string
}

func lastRoundOf(state *model.GameState) lastRoundView {
	last := state.LastRound()
	if last == nil {
		return lastRoundView{PlayerChoice: "-", ComputerChoice: "-"}
	}
	return lastRoundView{
		PlayerChoice:   last.PlayerChoice.Label(),
		ComputerChoice: last.ComputerChoice.Label(),
		PlayerEmoji:    last.PlayerChoice.Emoji(),
		ComputerEmoji:  last.ComputerChoice.Emoji(),
	}
}
