package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/logger"
)

type mockResetter struct {
	mu            sync.Mutex
	dailyCalls    int
	monthlyCalls  int
	dailyOwners   []uuid.UUID
	monthlyOwners []uuid.UUID
	dailyErr      error
	monthlyErr    error
}

func (m *mockResetter) ResetDailyCounters(_ context.Context, _ time.Time) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dailyCalls++
	return m.dailyOwners, m.dailyErr
}

func (m *mockResetter) ResetMonthlyCounters(_ context.Context, _ time.Time) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.monthlyCalls++
	return m.monthlyOwners, m.monthlyErr
}

type mockResetRecorder struct {
	mu     sync.Mutex
	events []string
	users  []uuid.UUID
}

func (m *mockResetRecorder) Record(_ context.Context, userID uuid.UUID, event string, _ models.JSONB) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	m.users = append(m.users, userID)
}

func TestCounterResetWorker(t *testing.T) {
	ownerA := uuid.New()
	ownerB := uuid.New()

	t.Run("runs both resets", func(t *testing.T) {
		resetter := &mockResetter{dailyOwners: []uuid.UUID{ownerA}}
		w := NewCounterResetWorker(resetter, &mockResetRecorder{}, logger.NewForTesting(), time.Minute)
		w.resetCounters(context.Background())

		assert.Equal(t, 1, resetter.dailyCalls)
		assert.Equal(t, 1, resetter.monthlyCalls)
	})

	t.Run("records one event per distinct owner", func(t *testing.T) {
		resetter := &mockResetter{
			dailyOwners:   []uuid.UUID{ownerA, ownerA, ownerB},
			monthlyOwners: []uuid.UUID{ownerB},
		}
		recorder := &mockResetRecorder{}
		w := NewCounterResetWorker(resetter, recorder, logger.NewForTesting(), time.Minute)
		w.resetCounters(context.Background())

		assert.Len(t, recorder.users, 3)
		assert.ElementsMatch(t, []uuid.UUID{ownerA, ownerB, ownerB}, recorder.users)
		for _, event := range recorder.events {
			assert.Equal(t, models.ActivityCountersReset, event)
		}
	})

	t.Run("nothing recorded when nothing was reset", func(t *testing.T) {
		recorder := &mockResetRecorder{}
		w := NewCounterResetWorker(&mockResetter{}, recorder, logger.NewForTesting(), time.Minute)
		w.resetCounters(context.Background())

		assert.Empty(t, recorder.events)
	})

	t.Run("daily failure still attempts monthly", func(t *testing.T) {
		resetter := &mockResetter{dailyErr: errors.New("db down")}
		w := NewCounterResetWorker(resetter, &mockResetRecorder{}, logger.NewForTesting(), time.Minute)
		w.resetCounters(context.Background())

		assert.Equal(t, 1, resetter.monthlyCalls)
	})

	t.Run("start and stop", func(t *testing.T) {
		resetter := &mockResetter{}
		w := NewCounterResetWorker(resetter, &mockResetRecorder{}, logger.NewForTesting(), 10*time.Millisecond)
		w.Start(context.Background())
		time.Sleep(25 * time.Millisecond)
		w.Stop()

		resetter.mu.Lock()
		defer resetter.mu.Unlock()
		assert.GreaterOrEqual(t, resetter.dailyCalls, 2)
	})
}
