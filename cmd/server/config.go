package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mcoot/clashoffists/internal/factory"
	"github.com/mcoot/clashoffists/internal/model"
)

const envPrefix = "CLASH"

// Config holds server settings from flags and CLASH_* environment variables
type Config struct {
	bind            string
	port            int
	userStore       string
	gameStore       string
	database        string
	redisURL        string
	secretKey       string
	sessionDuration time.Duration
	sessionSweep    string
	opponent        string
	corsOrigins     []string
	otelEndpoint    string
	logLevel        string
	logFormat       string
	baseURL         string
	staticDir       string
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	switch c.userStore {
	case factory.StorageTypeSQLite, factory.StorageTypeMemory, factory.StorageTypeRedis:
	default:
		return fmt.Errorf("invalid --user-store %q: must be sqlite, memory or redis", c.userStore)
	}
	switch c.gameStore {
	case factory.StorageTypeMemory, factory.StorageTypeRedis:
	default:
		return fmt.Errorf("invalid --game-store %q: must be memory or redis", c.gameStore)
	}
	if (c.userStore == factory.StorageTypeRedis || c.gameStore == factory.StorageTypeRedis) && c.redisURL == "" {
		return errors.New("--redis-url is required when a store is redis")
	}
	switch c.opponent {
	case model.OpponentRandom, model.OpponentCounter:
	default:
		return fmt.Errorf("invalid --opponent %q: must be random or counter", c.opponent)
	}
	if c.secretKey == "" {
		return errors.New("--secret-key must not be empty")
	}
	if c.sessionDuration <= 0 {
		return fmt.Errorf("invalid --session-duration: %s", c.sessionDuration)
	}
	if _, err := parseLevel(c.logLevel); err != nil {
		return err
	}
	if c.logFormat != "json" && c.logFormat != "text" {
		return fmt.Errorf("invalid --log-format %q: must be json or text", c.logFormat)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid --log-level %q", s)
	}
	return level, nil
}

func (c *Config) newLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.logLevel)
	opts := &slog.HandlerOptions{Level: level}
	if c.logFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func newCmd(cfg *Config, run func(cmd *cobra.Command, cfg *Config) error) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "clash-server",
		Short: "Serves the Clash of Fists web app and JSON API.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cmd, cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: CLASH_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 5000, "port to listen on (env: CLASH_PORT or PORT)")
	fs.StringVar(&cfg.userStore, "user-store", factory.StorageTypeSQLite, "user backend: sqlite, memory or redis (env: CLASH_USER_STORE)")
	fs.StringVar(&cfg.gameStore, "game-store", factory.StorageTypeMemory, "game state backend: memory or redis (env: CLASH_GAME_STORE)")
	fs.StringVar(&cfg.database, "database", factory.DefaultDatabasePath, "SQLite database file (env: CLASH_DATABASE)")
	fs.StringVar(&cfg.redisURL, "redis-url", "", "Redis URL for redis stores (env: CLASH_REDIS_URL)")
	fs.StringVar(&cfg.secretKey, "secret-key", "dev_secret_key", "key signing session tokens (env: CLASH_SECRET_KEY)")
	fs.DurationVar(&cfg.sessionDuration, "session-duration", 24*time.Hour, "login session lifetime (env: CLASH_SESSION_DURATION)")
	fs.StringVar(&cfg.sessionSweep, "session-sweep", "@every 5m", "cron spec for expired session cleanup (env: CLASH_SESSION_SWEEP)")
	fs.StringVar(&cfg.opponent, "opponent", model.OpponentRandom, "computer strategy: random or counter (env: CLASH_OPPONENT)")
	fs.StringSliceVar(&cfg.corsOrigins, "cors-origins", nil, "origins allowed to call the API cross-site (env: CLASH_CORS_ORIGINS)")
	fs.StringVar(&cfg.otelEndpoint, "otel-endpoint", "", "OTLP/HTTP trace endpoint, tracing is off when empty (env: CLASH_OTEL_ENDPOINT)")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "log level: debug, info, warn or error (env: CLASH_LOG_LEVEL)")
	fs.StringVar(&cfg.logFormat, "log-format", "json", "log format: json or text (env: CLASH_LOG_FORMAT)")
	fs.StringVar(&cfg.baseURL, "base-url", "", "public URL used in invite links (env: CLASH_BASE_URL)")
	fs.StringVar(&cfg.staticDir, "static-dir", "", "serve assets from this directory instead of the embedded copy (env: CLASH_STATIC_DIR)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		envName := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if f.Name == "port" {
			// Hosting platforms commonly inject a bare PORT
			_ = v.BindEnv(f.Name, envName, "PORT")
		} else {
			_ = v.BindEnv(f.Name, envName)
		}
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, envValue(v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

// envValue renders a viper value so pflag can parse it back
func envValue(val any) string {
	if list, ok := val.([]string); ok {
		return strings.Join(list, ",")
	}
	return fmt.Sprintf("%v", val)
}
