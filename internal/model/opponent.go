package model

// Opponent strategy constants
const (
	OpponentRandom  = "random"
	OpponentCounter = "counter"
)

// OpponentDisplayName returns a human-readable label for a strategy
func OpponentDisplayName(strategy string) string {
	switch strategy {
	case OpponentRandom:
		return "Random"
	case OpponentCounter:
		return "Counter"
	default:
		return strategy
	}
}

// ValidOpponents returns all valid opponent strategy names
func ValidOpponents() []string {
	return []string{OpponentRandom, OpponentCounter}
}
