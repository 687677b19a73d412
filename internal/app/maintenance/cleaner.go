package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/cgdb-project/cgdb/internal/access"
	"github.com/cgdb-project/cgdb/pkg/logger"
)

const (
	defaultTaskRetention = 30 * 24 * time.Hour
	defaultDrainSpec     = "@every 1m"
	defaultPruneSpec     = "@daily"
)

// Cleaner runs the background jobs that keep the creator-grant outbox
// converged: re-draining tasks a crashed process left pending, and
// pruning processed rows past their retention.
type Cleaner struct {
	hook      *access.Hook
	cron      *cron.Cron
	log       *zap.Logger
	retention time.Duration

	drainSchedule string
	pruneSchedule string
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

// WithTaskRetention adjusts how long processed outbox rows are kept.
func WithTaskRetention(retention time.Duration) Option {
	return func(cleaner *Cleaner) {
		if retention > 0 {
			cleaner.retention = retention
		}
	}
}

// WithDrainSchedule overrides the cron specification for outbox draining.
func WithDrainSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.drainSchedule = spec
		}
	}
}

// WithPruneSchedule overrides the cron specification for outbox pruning.
func WithPruneSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.pruneSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults.
func NewCleaner(hook *access.Hook, opts ...Option) (*Cleaner, error) {
	if hook == nil {
		return nil, errors.New("maintenance: hook is required")
	}

	cleaner := &Cleaner{
		hook:          hook,
		retention:     defaultTaskRetention,
		drainSchedule: defaultDrainSpec,
		pruneSchedule: defaultPruneSpec,
		log:           logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner, nil
}

// Start registers the jobs with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if _, err := c.cron.AddFunc(c.drainSchedule, func() {
		if processed, err := c.hook.Drain(context.Background()); err != nil {
			c.log.Warn("outbox drain failed", zap.Error(err))
		} else if processed > 0 {
			c.log.Info("outbox drained", zap.Int("processed", processed))
		}
	}); err != nil {
		return err
	}

	if _, err := c.cron.AddFunc(c.pruneSchedule, func() {
		if removed, err := c.hook.Prune(context.Background(), c.retention); err != nil {
			c.log.Warn("outbox prune failed", zap.Error(err))
		} else if removed > 0 {
			c.log.Info("outbox pruned", zap.Int64("removed", removed))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for running jobs to finish.
func (c *Cleaner) Stop(ctx context.Context) error {
	stopped := c.cron.Stop()

	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce executes both jobs immediately, used at startup so a restart
// converges without waiting for the first tick.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	var errs error
	if _, err := c.hook.Drain(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := c.hook.Prune(ctx, c.retention); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}
