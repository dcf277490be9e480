package random

import "math/rand/v2"

// Random picks indexes for the computer opponent. Tests queue results through mocks.MockRandom.
type Random interface {
	// Intn returns an int in [0, n), or 0 when n <= 0
	Intn(n int) int
}

// Source draws from the math/rand/v2 global generator, which is safe for concurrent use
type Source struct{}

// New creates a new Source
func New() Source {
	return Source{}
}

func (Source) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return rand.IntN(n)
}
