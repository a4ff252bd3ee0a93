package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"campusbot/internal/domain"
)

const (
	defaultSchedule = "@hourly"
	defaultMaxAge   = 24 * time.Hour
)

// Sweeper periodically deletes pending verifications that were never
// confirmed. Expiry is a best-effort background pass, not a per-record timer.
type Sweeper struct {
	pending  domain.PendingVerificationRepository
	cron     *cron.Cron
	logger   *slog.Logger
	now      func() time.Time
	maxAge   time.Duration
	schedule string
}

// Option customises the Sweeper.
type Option func(*Sweeper)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Sweeper) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithNow overrides the clock used for the expiry cutoff.
func WithNow(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMaxAge adjusts how long a pending verification may wait for its
// confirmation before being swept.
func WithMaxAge(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.maxAge = d
		}
	}
}

// WithSchedule overrides the cron specification for the sweep.
func WithSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.schedule = spec
		}
	}
}

// NewSweeper constructs a Sweeper with an hourly schedule and a 24h pending
// lifetime by default.
func NewSweeper(pending domain.PendingVerificationRepository, logger *slog.Logger, opts ...Option) *Sweeper {
	s := &Sweeper{
		pending:  pending,
		logger:   logger,
		now:      time.Now,
		maxAge:   defaultMaxAge,
		schedule: defaultSchedule,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cron == nil {
		s.cron = cron.New()
	}
	return s
}

// Start registers the sweep job and starts the scheduler.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.Sweep(context.Background())
	}); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep deletes pending verifications older than the configured lifetime.
func (s *Sweeper) Sweep(ctx context.Context) {
	cutoff := s.now().Add(-s.maxAge)
	removed, err := s.pending.DeleteExpired(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to sweep expired pending verifications", "error", err)
		return
	}
	if removed > 0 {
		s.logger.Info("swept expired pending verifications", "removed", removed)
	}
}
