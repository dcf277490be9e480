package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/clashoffists/internal/dependencies/clock"
)

// Epoch is where test clocks start
var Epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// MockClock only moves when a test moves it
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

var _ clock.Clock = (*MockClock)(nil)

func NewMockClock(start time.Time) *MockClock {
	return &MockClock{now: start.UTC()}
}

func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new time.
// Session expiry tests use it to step past a deadline.
func (c *MockClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}
