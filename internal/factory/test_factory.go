package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/clashoffists/internal/dependencies/mocks"
	"github.com/mcoot/clashoffists/internal/services/auth"
	"github.com/mcoot/clashoffists/internal/storage/memory"
	"github.com/mcoot/clashoffists/internal/testutil"
)

// TestApp is an App on a shared in-memory store with a scripted clock and opponent
type TestApp struct {
	*App

	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Store      *memory.Storage
}

// TestOption adjusts the Config a TestApp is built with
type TestOption func(*Config)

// WithOpponent selects the computer strategy by name
func WithOpponent(name string) TestOption {
	return func(c *Config) { c.Opponent = name }
}

// WithSessionDuration overrides how long test logins last
func WithSessionDuration(d time.Duration) TestOption {
	return func(c *Config) { c.AuthConfig.SessionDuration = d }
}

// NewTestApp builds a TestApp. Users and games share one memory.Storage so
// tests can inspect both through Store. It panics on a bad option.
func NewTestApp(opts ...TestOption) *TestApp {
	cfg := Config{
		AuthConfig: auth.Config{SecretKey: "test-secret", BcryptCost: bcrypt.MinCost},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	ta := &TestApp{
		MockClock:  mocks.NewMockClock(mocks.Epoch),
		MockRandom: mocks.NewMockRandom(),
		Store:      memory.New(),
	}
	app, err := newWithDependencies(ta.Store, ta.Store, ta.MockClock, ta.MockRandom, cfg, testutil.NopLogger())
	if err != nil {
		panic(err)
	}
	ta.App = app
	return ta
}
