package game

import "github.com/mcoot/clashoffists/internal/model"

// Placeholder shown for choices before the first round
const noChoice = "-"

// Payload is the flat JSON shape returned by play, reset and state requests
type Payload struct {
	PlayerScore    int                 `json:"player_score"`
	ComputerScore  int                 `json:"computer_score"`
	Round          int                 `json:"round"`
	PlayerChoice   string              `json:"player_choice"`
	ComputerChoice string              `json:"computer_choice"`
	PlayerEmoji    string              `json:"player_emoji"`
	ComputerEmoji  string              `json:"computer_emoji"`
	Result         string              `json:"result"`
	History        []model.RoundRecord `json:"history"`
}

// PayloadFromResult builds the response for a play request
func PayloadFromResult(r *PlayResult) Payload {
	return Payload{
		PlayerScore:    r.State.PlayerScore,
		ComputerScore:  r.State.ComputerScore,
		Round:          r.State.Round,
		PlayerChoice:   string(r.Round.PlayerChoice),
		ComputerChoice: string(r.Round.ComputerChoice),
		PlayerEmoji:    r.Round.PlayerChoice.Emoji(),
		ComputerEmoji:  r.Round.ComputerChoice.Emoji(),
		Result:         string(r.Round.Result),
		History:        historyOf(r.State),
	}
}

// PayloadFromState describes a state without a fresh round. The last
// round, if any, fills the choice fields.
func PayloadFromState(state *model.GameState) Payload {
	last := state.LastRound()
	if last == nil {
		return Payload{
			PlayerScore:    state.PlayerScore,
			ComputerScore:  state.ComputerScore,
			Round:          state.Round,
			PlayerChoice:   noChoice,
			ComputerChoice: noChoice,
			History:        historyOf(state),
		}
	}
	return PayloadFromResult(&PlayResult{State: state, Round: *last})
}

// ResetPayload is the response to a reset request
func ResetPayload() Payload {
	return Payload{
		PlayerChoice:   noChoice,
		ComputerChoice: noChoice,
		History:        []model.RoundRecord{},
	}
}

func historyOf(state *model.GameState) []model.RoundRecord {
	if state.History == nil {
		return []model.RoundRecord{}
	}
	return state.History
}
