package workers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/logger"
)

// CounterResetter performs the idempotent counter resets at the store layer,
// returning the owner of each schedule that was reset
type CounterResetter interface {
	ResetDailyCounters(ctx context.Context, nowUTC time.Time) ([]uuid.UUID, error)
	ResetMonthlyCounters(ctx context.Context, nowUTC time.Time) ([]uuid.UUID, error)
}

// ResetActivityRecorder records counter resets in the owners' activity feeds
type ResetActivityRecorder interface {
	Record(ctx context.Context, userID uuid.UUID, event string, metadata models.JSONB)
}

// CounterResetWorker periodically zeroes the daily cost and monthly post
// counters. The reset itself is keyed on the last-reset columns, so running
// it more often than once per period is harmless.
type CounterResetWorker struct {
	store    CounterResetter
	activity ResetActivityRecorder
	logger   *logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewCounterResetWorker creates a new counter reset worker
func NewCounterResetWorker(store CounterResetter, activity ResetActivityRecorder, log *logger.Logger, interval time.Duration) *CounterResetWorker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	return &CounterResetWorker{
		store:    store,
		activity: activity,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start starts the worker in the background
func (w *CounterResetWorker) Start(ctx context.Context) {
	w.logger.Info("Starting counter reset worker",
		logger.String("interval", w.interval.String()),
	)

	go w.run(ctx)
}

// Stop stops the worker gracefully
func (w *CounterResetWorker) Stop() {
	w.logger.Info("Stopping counter reset worker")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info("Counter reset worker stopped")
}

func (w *CounterResetWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.resetCounters(ctx)

	for {
		select {
		case <-ticker.C:
			w.resetCounters(ctx)
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (w *CounterResetWorker) resetCounters(ctx context.Context) {
	now := time.Now().UTC()

	daily, err := w.store.ResetDailyCounters(ctx, now)
	if err != nil {
		w.logger.Errorf("Failed to reset daily cost counters: %v", err)
	} else if len(daily) > 0 {
		w.logger.Infof("Reset daily cost counters for %d schedules", len(daily))
		w.recordResets(ctx, daily, "daily_cost")
	}

	monthly, err := w.store.ResetMonthlyCounters(ctx, now)
	if err != nil {
		w.logger.Errorf("Failed to reset monthly post counters: %v", err)
	} else if len(monthly) > 0 {
		w.logger.Infof("Reset monthly post counters for %d schedules", len(monthly))
		w.recordResets(ctx, monthly, "monthly_posts")
	}
}

// recordResets writes one activity event per distinct owner
func (w *CounterResetWorker) recordResets(ctx context.Context, owners []uuid.UUID, counter string) {
	seen := make(map[uuid.UUID]struct{}, len(owners))
	for _, owner := range owners {
		if _, ok := seen[owner]; ok {
			continue
		}
		seen[owner] = struct{}{}
		w.activity.Record(ctx, owner, models.ActivityCountersReset, models.JSONB{
			"counter": counter,
		})
	}
}
