package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor periodically purges idle sessions from a Store.
type Janitor struct {
	cron    *cron.Cron
	store   Store
	maxIdle time.Duration
	spec    string // cron spec, e.g. "@every 10m"
	logger  *slog.Logger
}

// NewJanitor creates a janitor that runs on spec and evicts sessions idle
// longer than maxIdle.
func NewJanitor(store Store, spec string, maxIdle time.Duration, logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Janitor{
		cron:    cron.New(),
		store:   store,
		maxIdle: maxIdle,
		spec:    spec,
		logger:  logger.With("component", "session-janitor"),
	}
}

// Start registers the purge job and starts the scheduler.
func (j *Janitor) Start(ctx context.Context) error {
	if _, err := j.cron.AddFunc(j.spec, func() { j.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc(%q): %w", j.spec, err)
	}
	j.cron.Start()
	j.logger.Info("janitor started", "spec", j.spec, "max_idle", j.maxIdle)
	return nil
}

// Stop halts the scheduler and waits for a running purge to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("janitor stopped")
}

// RunOnce purges idle sessions immediately.
func (j *Janitor) RunOnce(ctx context.Context) int {
	n, err := j.store.PurgeIdle(ctx, j.maxIdle)
	if err != nil {
		j.logger.Error("purge idle sessions failed", "error", err)
		return 0
	}
	if n > 0 {
		j.logger.Info("purged idle sessions", "count", n)
	}
	return n
}
