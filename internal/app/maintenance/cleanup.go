package maintenance

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	iauth "github.com/charlesng35/otpdash/internal/auth"
	"github.com/charlesng35/otpdash/pkg/logger"
)

const (
	defaultSessionSpec   = "@hourly"
	defaultRateStoreSpec = "@every 5m"
)

// RatePruner drops rate limit counters whose window has closed.
type RatePruner interface {
	Prune() int
}

// Cleaner coordinates background maintenance: purging expired and revoked sessions and
// pruning stale rate limit counters.
type Cleaner struct {
	sessions *iauth.SessionService
	rates    RatePruner
	cron     *cron.Cron
	log      *zap.Logger
	enabled  bool

	sessionSchedule   string
	rateStoreSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithSessionSchedule overrides the cron specification for session cleanup.
func WithSessionSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.sessionSchedule = spec
		}
	}
}

// WithRatePruner registers an in-memory rate store for periodic pruning.
func WithRatePruner(rates RatePruner) Option {
	return func(cleaner *Cleaner) {
		cleaner.rates = rates
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. Any nil dependency results in
// the corresponding cleanup job being skipped.
func NewCleaner(sessions *iauth.SessionService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		sessions:          sessions,
		sessionSchedule:   defaultSessionSpec,
		rateStoreSchedule: defaultRateStoreSpec,
		log:               logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	cleaner.enabled = cleaner.sessions != nil || cleaner.rates != nil

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it if at least one cleanup is enabled.
func (c *Cleaner) Start() error {
	if !c.enabled {
		return nil
	}

	if c.sessions != nil {
		if _, err := c.cron.AddFunc(c.sessionSchedule, func() {
			removed, err := c.sessions.CleanupExpired(context.Background())
			if err != nil {
				c.log.Warn("session cleanup failed", zap.Error(err))
				return
			}
			if removed > 0 {
				c.log.Info("sessions purged", zap.Int64("removed", removed))
			}
		}); err != nil {
			return err
		}
	}

	if c.rates != nil {
		if _, err := c.cron.AddFunc(c.rateStoreSchedule, func() {
			c.rates.Prune()
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Primarily used in tests
// and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.sessions != nil {
		if _, err := c.sessions.CleanupExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.rates != nil {
		c.rates.Prune()
	}

	if err := ctx.Err(); err != nil {
		errs = multierr.Append(errs, err)
	}

	return errs
}
