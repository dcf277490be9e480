package components

import "github.com/mcoot/clashoffists/internal/model"

//go:generate templ generate

func historyMessage(rec model.RoundRecord) string {
	switch rec.Result {
	case model.OutcomeWin:
		return "You won with " + string(rec.PlayerChoice) + " vs " + string(rec.ComputerChoice)
	case model.OutcomeLose:
		return "Computer won with " + string(rec.ComputerChoice) + " vs " + string(rec.PlayerChoice)
	default:
		return "Tie with " + string(rec.PlayerChoice)
	}
}
