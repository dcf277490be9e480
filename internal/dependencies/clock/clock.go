package clock

import "time"

// Clock stamps sessions and game state. Tests substitute mocks.MockClock.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock
type System struct{}

// New creates a new System clock
func New() System {
	return System{}
}

// Now returns the current time in UTC so stored timestamps compare cleanly
func (System) Now() time.Time {
	return time.Now().UTC()
}
