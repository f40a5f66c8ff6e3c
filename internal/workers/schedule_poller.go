package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/engine"
	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/logger"
)

// ActiveScheduleSource lists schedules eligible for evaluation
type ActiveScheduleSource interface {
	ListActive(ctx context.Context) ([]*models.AutoSchedule, error)
}

// RunExecutor executes one run of a due schedule
type RunExecutor interface {
	Run(ctx context.Context, schedule *models.AutoSchedule, nowUTC time.Time, manual bool) (*models.RunResult, error)
}

// SchedulePoller periodically evaluates active schedules and executes the due
// ones through a bounded worker pool.
type SchedulePoller struct {
	schedules     ActiveScheduleSource
	runner        RunExecutor
	logger        *logger.Logger
	pollInterval  time.Duration
	maxConcurrent int
	stopCh        chan struct{}
	doneCh        chan struct{}
}

// NewSchedulePoller creates a new schedule poller
func NewSchedulePoller(
	schedules ActiveScheduleSource,
	runner RunExecutor,
	log *logger.Logger,
	pollInterval time.Duration,
	maxConcurrent int,
) *SchedulePoller {
	if pollInterval <= 0 {
		pollInterval = 1 * time.Minute
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	return &SchedulePoller{
		schedules:     schedules,
		runner:        runner,
		logger:        log,
		pollInterval:  pollInterval,
		maxConcurrent: maxConcurrent,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Start starts the poller in the background
func (w *SchedulePoller) Start(ctx context.Context) {
	w.logger.Info("Starting schedule poller",
		logger.String("interval", w.pollInterval.String()),
		logger.Int("max_concurrent", w.maxConcurrent),
	)

	go w.run(ctx)
}

// Stop stops the poller gracefully, waiting for in-flight runs
func (w *SchedulePoller) Stop() {
	w.logger.Info("Stopping schedule poller")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info("Schedule poller stopped")
}

func (w *SchedulePoller) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.processTick(ctx)

	for {
		select {
		case <-ticker.C:
			w.processTick(ctx)
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// processTick evaluates every active schedule once. Due schedules run
// concurrently up to the pool bound; the tick waits for its runs so ticks do
// not pile up on each other.
func (w *SchedulePoller) processTick(ctx context.Context) {
	now := time.Now().UTC()

	schedules, err := w.schedules.ListActive(ctx)
	if err != nil {
		w.logger.Errorf("Failed to list active schedules: %v", err)
		return
	}

	due := make([]*models.AutoSchedule, 0, len(schedules))
	for _, schedule := range schedules {
		if engine.IsDue(schedule, now, w.pollInterval) {
			due = append(due, schedule)
		}
	}
	if len(due) == 0 {
		w.logger.Debug("No due schedules")
		return
	}

	w.logger.Infof("Processing %d due schedules", len(due))

	sem := make(chan struct{}, w.maxConcurrent)
	var wg sync.WaitGroup
	for _, schedule := range due {
		wg.Add(1)
		sem <- struct{}{}
		go func(schedule *models.AutoSchedule) {
			defer wg.Done()
			defer func() { <-sem }()
			w.runOne(ctx, schedule, now)
		}(schedule)
	}
	wg.Wait()
}

// runOne executes a single due schedule. One schedule's failure never stops
// evaluation of the others.
func (w *SchedulePoller) runOne(ctx context.Context, schedule *models.AutoSchedule, now time.Time) {
	result, err := w.runner.Run(ctx, schedule, now, false)
	switch {
	case err == nil:
		w.logger.Infof(
			"Schedule run succeeded: schedule_id=%s, content_id=%s, disposition=%s",
			schedule.ID, result.ContentID, result.Disposition,
		)
	case errors.Is(err, models.ErrRunInProgress):
		w.logger.Debug("Schedule already claimed by another worker",
			logger.String("schedule_id", schedule.ID.String()),
		)
	case errors.Is(err, models.ErrBudgetExceeded):
		w.logger.Infof("Schedule run denied by budget: schedule_id=%s", schedule.ID)
	default:
		w.logger.Errorf("Schedule run failed: schedule_id=%s: %v", schedule.ID, err)
	}
}
