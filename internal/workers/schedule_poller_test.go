package workers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/logger"
)

type mockScheduleSource struct {
	listFn func(ctx context.Context) ([]*models.AutoSchedule, error)
}

func (m *mockScheduleSource) ListActive(ctx context.Context) ([]*models.AutoSchedule, error) {
	return m.listFn(ctx)
}

type mockRunExecutor struct {
	mu    sync.Mutex
	runs  []uuid.UUID
	runFn func(ctx context.Context, schedule *models.AutoSchedule, nowUTC time.Time, manual bool) (*models.RunResult, error)
}

func (m *mockRunExecutor) Run(ctx context.Context, schedule *models.AutoSchedule, nowUTC time.Time, manual bool) (*models.RunResult, error) {
	m.mu.Lock()
	m.runs = append(m.runs, schedule.ID)
	m.mu.Unlock()
	if m.runFn != nil {
		return m.runFn(ctx, schedule, nowUTC, manual)
	}
	return &models.RunResult{ScheduleID: schedule.ID}, nil
}

func (m *mockRunExecutor) ranSchedules() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uuid.UUID(nil), m.runs...)
}

// dueNow returns a schedule whose window covers the current minute
func dueNow() *models.AutoSchedule {
	now := time.Now().UTC()
	return &models.AutoSchedule{
		ID:           uuid.New(),
		Frequency:    models.FrequencyDaily,
		TimeOfDayUTC: now.Format("15:04"),
		IsActive:     true,
	}
}

func TestSchedulePollerProcessTick(t *testing.T) {
	t.Run("runs only due schedules", func(t *testing.T) {
		due := dueNow()
		notDue := dueNow()
		notDue.TimeOfDayUTC = time.Now().UTC().Add(6 * time.Hour).Format("15:04")

		source := &mockScheduleSource{
			listFn: func(_ context.Context) ([]*models.AutoSchedule, error) {
				return []*models.AutoSchedule{due, notDue}, nil
			},
		}
		executor := &mockRunExecutor{}

		poller := NewSchedulePoller(source, executor, logger.NewForTesting(), time.Minute, 2)
		poller.processTick(context.Background())

		ran := executor.ranSchedules()
		require.Len(t, ran, 1)
		assert.Equal(t, due.ID, ran[0])
	})

	t.Run("one failing schedule does not stop the others", func(t *testing.T) {
		first := dueNow()
		second := dueNow()

		source := &mockScheduleSource{
			listFn: func(_ context.Context) ([]*models.AutoSchedule, error) {
				return []*models.AutoSchedule{first, second}, nil
			},
		}
		executor := &mockRunExecutor{
			runFn: func(_ context.Context, schedule *models.AutoSchedule, _ time.Time, _ bool) (*models.RunResult, error) {
				if schedule.ID == first.ID {
					return nil, models.ErrGenerationFailed
				}
				return &models.RunResult{ScheduleID: schedule.ID}, nil
			},
		}

		poller := NewSchedulePoller(source, executor, logger.NewForTesting(), time.Minute, 2)
		poller.processTick(context.Background())

		assert.Len(t, executor.ranSchedules(), 2)
	})

	t.Run("respects the concurrency bound", func(t *testing.T) {
		schedules := []*models.AutoSchedule{dueNow(), dueNow(), dueNow(), dueNow()}
		source := &mockScheduleSource{
			listFn: func(_ context.Context) ([]*models.AutoSchedule, error) {
				return schedules, nil
			},
		}

		var mu sync.Mutex
		inFlight, peak := 0, 0
		executor := &mockRunExecutor{
			runFn: func(_ context.Context, schedule *models.AutoSchedule, _ time.Time, _ bool) (*models.RunResult, error) {
				mu.Lock()
				inFlight++
				if inFlight > peak {
					peak = inFlight
				}
				mu.Unlock()

				time.Sleep(10 * time.Millisecond)

				mu.Lock()
				inFlight--
				mu.Unlock()
				return &models.RunResult{ScheduleID: schedule.ID}, nil
			},
		}

		poller := NewSchedulePoller(source, executor, logger.NewForTesting(), time.Minute, 2)
		poller.processTick(context.Background())

		assert.Len(t, executor.ranSchedules(), 4)
		assert.LessOrEqual(t, peak, 2)
	})
}

func TestSchedulePollerStartStop(t *testing.T) {
	source := &mockScheduleSource{
		listFn: func(_ context.Context) ([]*models.AutoSchedule, error) {
			return nil, nil
		},
	}

	poller := NewSchedulePoller(source, &mockRunExecutor{}, logger.NewForTesting(), 10*time.Millisecond, 1)
	poller.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	poller.Stop()
}
