package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/clashoffists/internal/api"
	"github.com/mcoot/clashoffists/internal/factory"
	"github.com/mcoot/clashoffists/internal/services/auth"
	"github.com/mcoot/clashoffists/internal/services/maintenance"
	redisstorage "github.com/mcoot/clashoffists/internal/storage/redis"
	"github.com/mcoot/clashoffists/internal/telemetry"
	"github.com/mcoot/clashoffists/internal/web"
)

const serviceName = "clash-of-fists"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := newCmd(&Config{}, serve)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// factoryConfig maps server flags onto the application factory
func (c *Config) factoryConfig(logger *slog.Logger) factory.Config {
	authCfg := auth.DefaultConfig()
	authCfg.SecretKey = c.secretKey
	authCfg.SessionDuration = c.sessionDuration

	maintCfg := maintenance.DefaultConfig()
	maintCfg.SessionSweep = c.sessionSweep

	fc := factory.Config{
		UserStore:    c.userStore,
		GameStore:    c.gameStore,
		DatabasePath: c.database,
		AuthConfig:   authCfg,
		Opponent:     c.opponent,
		Maintenance:  maintCfg,
		Logger:       logger,
	}
	if c.redisURL != "" {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.redisURL
		fc.RedisConfig = &redisCfg
	}
	return fc
}

// newHandler mounts the JSON API under /api/ and the web app everywhere else
func newHandler(app *factory.App, c *Config, logger *slog.Logger) http.Handler {
	var static fs.FS
	if c.staticDir != "" {
		static = os.DirFS(c.staticDir)
	}

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:       logger,
		AuthService:  app.AuthService,
		LobbyService: app.LobbyService,
		GameService:  app.GameService,
		CORSOrigins:  c.corsOrigins,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:       logger,
		AuthService:  app.AuthService,
		LobbyService: app.LobbyService,
		GameService:  app.GameService,
		PresenceHub:  app.PresenceHub,
		Presence:     app.Presence,
		BaseURL:      c.baseURL,
		Static:       static,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)
	return mux
}

func serve(cmd *cobra.Command, c *Config) error {
	ctx := cmd.Context()

	logger := c.newLogger(os.Stdout)
	slog.SetDefault(logger)

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, c.otelEndpoint)
	if err != nil {
		return fmt.Errorf("set up tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown failed", slog.String("error", err.Error()))
		}
	}()

	app, err := factory.New(ctx, c.factoryConfig(logger))
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("close failed", slog.String("error", err.Error()))
		}
	}()

	app.Scheduler.Start()
	defer func() {
		if err := app.Scheduler.Stop(context.Background()); err != nil {
			logger.Warn("scheduler stop failed", slog.String("error", err.Error()))
		}
	}()

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = c.bind
	serverConfig.Port = c.port
	server := api.NewServer(newHandler(app, c, logger), serverConfig, logger)
	server.OnShutdown(app.PresenceHub.Close)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server starting",
		slog.String("bind", c.bind),
		slog.Int("port", c.port),
		slog.String("user_store", c.userStore),
		slog.String("game_store", c.gameStore),
		slog.String("opponent", c.opponent),
	)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}
