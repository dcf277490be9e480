package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/clashoffists/internal/dependencies/clock"
	"github.com/mcoot/clashoffists/internal/dependencies/random"
	"github.com/mcoot/clashoffists/internal/services/auth"
	"github.com/mcoot/clashoffists/internal/services/game"
	"github.com/mcoot/clashoffists/internal/services/lobby"
	"github.com/mcoot/clashoffists/internal/services/maintenance"
	"github.com/mcoot/clashoffists/internal/services/opponent"
	"github.com/mcoot/clashoffists/internal/storage"
	"github.com/mcoot/clashoffists/internal/storage/memory"
	redisstorage "github.com/mcoot/clashoffists/internal/storage/redis"
	"github.com/mcoot/clashoffists/internal/storage/sqlite"
	"github.com/mcoot/clashoffists/internal/web/sse"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// DefaultDatabasePath is the SQLite file used when none is configured
const DefaultDatabasePath = "clash_of_fists.db"

// App contains all wired application components
type App struct {
	// Storage
	Users storage.Users
	Games storage.Games

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	AuthService  *auth.Service
	GameService  *game.Service
	LobbyService *lobby.Service
	Scheduler    *maintenance.Scheduler

	// Presence push to lobby pages
	PresenceHub *sse.Hub
	Presence    *sse.Broadcaster

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// UserStore selects the user backend ("sqlite", "memory" or "redis")
	// If empty, defaults to "sqlite"
	UserStore string
	// GameStore selects the game-state backend ("memory" or "redis")
	// If empty, defaults to "memory"
	GameStore string
	// DatabasePath is the SQLite file (sqlite user store only)
	DatabasePath string
	// RedisConfig holds Redis connection settings (required if either store is "redis")
	RedisConfig *redisstorage.Config
	// AuthConfig holds configuration for the auth service (optional)
	AuthConfig auth.Config
	// Opponent names the computer strategy; defaults to random
	Opponent string
	// Maintenance configures the background scheduler (optional)
	Maintenance maintenance.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	userStore := cfg.UserStore
	if userStore == "" {
		userStore = StorageTypeSQLite
	}
	gameStore := cfg.GameStore
	if gameStore == "" {
		gameStore = StorageTypeMemory
	}

	var closers []io.Closer
	closeAll := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}

	// One Redis connection serves both stores when both select it
	var redisStore *redisstorage.Storage
	if userStore == StorageTypeRedis || gameStore == StorageTypeRedis {
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when a store is redis")
		}
		rs, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		redisStore = rs
		closers = append(closers, rs)
	}

	var mem *memory.Storage
	memoryStore := func() *memory.Storage {
		if mem == nil {
			mem = memory.New()
		}
		return mem
	}

	var users storage.Users
	switch userStore {
	case StorageTypeSQLite:
		path := cfg.DatabasePath
		if path == "" {
			path = DefaultDatabasePath
		}
		store, err := sqlite.Open(ctx, path)
		if err != nil {
			closeAll()
			return nil, err
		}
		closers = append(closers, store)
		users = store
	case StorageTypeMemory:
		users = memoryStore()
	case StorageTypeRedis:
		users = redisStore
	default:
		closeAll()
		return nil, fmt.Errorf("invalid UserStore %q: must be 'sqlite', 'memory' or 'redis'", userStore)
	}

	var games storage.Games
	switch gameStore {
	case StorageTypeMemory:
		games = memoryStore()
	case StorageTypeRedis:
		games = redisStore
	default:
		closeAll()
		return nil, fmt.Errorf("invalid GameStore %q: must be 'memory' or 'redis'", gameStore)
	}

	app, err := newWithDependencies(users, games, clock.New(), random.New(), cfg, logger)
	if err != nil {
		closeAll()
		return nil, err
	}
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(users storage.Users, games storage.Games, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) (*App, error) {
	strategy, err := opponent.New(cfg.Opponent, rnd)
	if err != nil {
		return nil, err
	}

	lobbyService := lobby.New(users, logger)
	hub := sse.NewHub(logger)
	presence := sse.NewBroadcaster(hub, lobbyService, logger)
	lobbyService.Subscribe(presence.PresenceChanged)

	authService := auth.New(users, clk, cfg.AuthConfig, lobbyService, logger)
	gameService := game.New(games, strategy, clk, logger)

	scheduler, err := maintenance.New(authService, cfg.Maintenance, logger)
	if err != nil {
		return nil, err
	}

	go hub.Run()

	return &App{
		Users:        users,
		Games:        games,
		Clock:        clk,
		Random:       rnd,
		AuthService:  authService,
		GameService:  gameService,
		LobbyService: lobbyService,
		Scheduler:    scheduler,
		PresenceHub:  hub,
		Presence:     presence,
	}, nil
}

// Close stops the presence hub and releases storage connections
func (a *App) Close() error {
	a.PresenceHub.Close()
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
