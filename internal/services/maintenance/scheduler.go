package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// SessionCleaner drops expired sessions and reports how many users went offline
type SessionCleaner interface {
	CleanExpiredSessions(ctx context.Context) (int, error)
}

// Config holds configuration for the maintenance scheduler
type Config struct {
	// SessionSweep is a cron spec, e.g. "@every 5m" or "*/5 * * * *"
	SessionSweep string
	// JobTimeout bounds a single job run
	JobTimeout time.Duration
}

// DefaultConfig returns default maintenance configuration
func DefaultConfig() Config {
	return Config{
		SessionSweep: "@every 5m",
		JobTimeout:   30 * time.Second,
	}
}

// Scheduler runs periodic housekeeping jobs
type Scheduler struct {
	cron     *cron.Cron
	sessions SessionCleaner
	logger   *slog.Logger
	timeout  time.Duration
}

// New creates a Scheduler. Jobs do not run until Start is called.
func New(sessions SessionCleaner, cfg Config, logger *slog.Logger) (*Scheduler, error) {
	defaults := DefaultConfig()
	if cfg.SessionSweep == "" {
		cfg.SessionSweep = defaults.SessionSweep
	}
	if cfg.JobTimeout == 0 {
		cfg.JobTimeout = defaults.JobTimeout
	}

	s := &Scheduler{
		cron:     cron.New(),
		sessions: sessions,
		logger:   logger.With(slog.String("component", "maintenance")),
		timeout:  cfg.JobTimeout,
	}

	if _, err := s.cron.AddFunc(cfg.SessionSweep, s.runSessionSweep); err != nil {
		return nil, fmt.Errorf("invalid session sweep schedule %q: %w", cfg.SessionSweep, err)
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.logger.Info("maintenance scheduler started", slog.Int("jobs", len(s.cron.Entries())))
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs or ctx, whichever is first
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("maintenance scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SweepSessions runs one expired-session sweep immediately
func (s *Scheduler) SweepSessions(ctx context.Context) (int, error) {
	offline, err := s.sessions.CleanExpiredSessions(ctx)
	if err != nil {
		s.logger.Error("session sweep failed", slog.String("error", err.Error()))
		return offline, err
	}
	if offline > 0 {
		s.logger.Info("session sweep marked users offline", slog.Int("users", offline))
	}
	return offline, nil
}

func (s *Scheduler) runSessionSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	_, _ = s.SweepSessions(ctx)
}
