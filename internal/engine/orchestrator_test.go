package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/logger"
)

type mockRunStore struct {
	claimFn   func(ctx context.Context, id uuid.UUID, runAt time.Time, notBefore *time.Time) (bool, error)
	reserveFn func(ctx context.Context, id uuid.UUID, estimatedCost float64) (bool, error)
	releaseFn func(ctx context.Context, id uuid.UUID, estimatedCost float64) error
	commitFn  func(ctx context.Context, id uuid.UUID, costDelta float64, nextTopicIndex int) error
}

func (m *mockRunStore) ClaimRun(ctx context.Context, id uuid.UUID, runAt time.Time, notBefore *time.Time) (bool, error) {
	if m.claimFn != nil {
		return m.claimFn(ctx, id, runAt, notBefore)
	}
	return true, nil
}

func (m *mockRunStore) ReserveBudget(ctx context.Context, id uuid.UUID, estimatedCost float64) (bool, error) {
	if m.reserveFn != nil {
		return m.reserveFn(ctx, id, estimatedCost)
	}
	return true, nil
}

func (m *mockRunStore) ReleaseBudget(ctx context.Context, id uuid.UUID, estimatedCost float64) error {
	if m.releaseFn != nil {
		return m.releaseFn(ctx, id, estimatedCost)
	}
	return nil
}

func (m *mockRunStore) CommitRun(ctx context.Context, id uuid.UUID, costDelta float64, nextTopicIndex int) error {
	if m.commitFn != nil {
		return m.commitFn(ctx, id, costDelta, nextTopicIndex)
	}
	return nil
}

type mockQueueStore struct {
	createFn          func(ctx context.Context, schedule *models.ContentSchedule) error
	ensurePublishedFn func(ctx context.Context, schedule *models.ContentSchedule) error
}

func (m *mockQueueStore) Create(ctx context.Context, schedule *models.ContentSchedule) error {
	if m.createFn != nil {
		return m.createFn(ctx, schedule)
	}
	return nil
}

func (m *mockQueueStore) EnsurePublished(ctx context.Context, schedule *models.ContentSchedule) error {
	if m.ensurePublishedFn != nil {
		return m.ensurePublishedFn(ctx, schedule)
	}
	return nil
}

type mockGenerator struct {
	generateFn func(ctx context.Context, req *GenerationRequest) (*GenerationResult, error)
}

func (m *mockGenerator) Generate(ctx context.Context, req *GenerationRequest) (*GenerationResult, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, req)
	}
	return &GenerationResult{ContentID: uuid.New(), Title: "Generated", Cost: 0.02, Published: true}, nil
}

// memoryLocker is a process-local lock map standing in for redis in tests.
type memoryLocker struct {
	mu    sync.Mutex
	locks map[string]bool
}

func newMemoryLocker() *memoryLocker {
	return &memoryLocker{locks: make(map[string]bool)}
}

func (l *memoryLocker) AcquireLock(_ context.Context, key string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks[key] {
		return false, nil
	}
	l.locks[key] = true
	return true, nil
}

func (l *memoryLocker) ReleaseLock(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, key)
	return nil
}

type mockAudit struct {
	mu     sync.Mutex
	events []string
}

func (m *mockAudit) Record(_ context.Context, _ uuid.UUID, event string, _ models.JSONB) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *mockAudit) has(event string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e == event {
			return true
		}
	}
	return false
}

func testSchedule() *models.AutoSchedule {
	return &models.AutoSchedule{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		SiteID:         uuid.New(),
		Name:           "Weekly SEO roundup",
		Frequency:      models.FrequencyDaily,
		TimeOfDayUTC:   "00:00",
		Topics:         models.StringList{"Alpha", "Beta", "Gamma"},
		TopicRotation:  models.RotationSequential,
		NextTopicIndex: 0,
		MaxDailyCost:   5.0,
		MaxMonthlyPost: 30,
		IsActive:       true,
	}
}

func newTestOrchestrator(store *mockRunStore, queue *mockQueueStore, gen *mockGenerator, audit *mockAudit) *Orchestrator {
	return NewOrchestrator(store, queue, gen, newMemoryLocker(), audit, logger.NewForTesting(), time.Minute)
}

func TestOrchestratorRunDraft(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	contentID := uuid.New()

	var created *models.ContentSchedule
	var committedDelta float64
	var committedIndex int

	store := &mockRunStore{
		commitFn: func(_ context.Context, _ uuid.UUID, costDelta float64, nextTopicIndex int) error {
			committedDelta = costDelta
			committedIndex = nextTopicIndex
			return nil
		},
	}
	queue := &mockQueueStore{
		createFn: func(_ context.Context, s *models.ContentSchedule) error {
			created = s
			return nil
		},
	}
	gen := &mockGenerator{
		generateFn: func(_ context.Context, req *GenerationRequest) (*GenerationResult, error) {
			assert.Equal(t, "Alpha", req.Topic)
			return &GenerationResult{ContentID: contentID, Title: "Alpha deep dive", Cost: 0.03}, nil
		},
	}
	audit := &mockAudit{}

	o := newTestOrchestrator(store, queue, gen, audit)
	result, err := o.Run(context.Background(), testSchedule(), now, false)
	require.NoError(t, err)

	assert.Equal(t, models.DispositionDraft, result.Disposition)
	assert.Equal(t, contentID, result.ContentID)
	assert.Equal(t, "Alpha", result.Topic)
	assert.InDelta(t, 0.03, result.Cost, 1e-9)

	require.NotNil(t, created)
	assert.Equal(t, models.ContentScheduleStatusDraft, created.Status)
	assert.Equal(t, now, created.ScheduledDate)

	assert.InDelta(t, 0.03-DefaultEstimatedRunCost, committedDelta, 1e-9)
	assert.Equal(t, 1, committedIndex)
	assert.True(t, audit.has(models.ActivityRunCompleted))
}

func TestOrchestratorRunScheduledWithDelay(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	var created *models.ContentSchedule
	queue := &mockQueueStore{
		createFn: func(_ context.Context, s *models.ContentSchedule) error {
			created = s
			return nil
		},
	}

	s := testSchedule()
	s.AutoPublish = true
	s.PublishDelayHours = 4

	o := newTestOrchestrator(&mockRunStore{}, queue, &mockGenerator{}, &mockAudit{})
	result, err := o.Run(context.Background(), s, now, false)
	require.NoError(t, err)

	assert.Equal(t, models.DispositionScheduled, result.Disposition)
	require.NotNil(t, created)
	assert.Equal(t, models.ContentScheduleStatusScheduled, created.Status)
	assert.Equal(t, now.Add(4*time.Hour), created.ScheduledDate)
}

func TestOrchestratorRunImmediatePublish(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	var ensured *models.ContentSchedule
	queue := &mockQueueStore{
		ensurePublishedFn: func(_ context.Context, s *models.ContentSchedule) error {
			ensured = s
			return nil
		},
		createFn: func(_ context.Context, _ *models.ContentSchedule) error {
			t.Fatal("immediate publish must use the idempotent published insert")
			return nil
		},
	}

	s := testSchedule()
	s.AutoPublish = true
	s.PublishDelayHours = 0

	o := newTestOrchestrator(&mockRunStore{}, queue, &mockGenerator{}, &mockAudit{})
	result, err := o.Run(context.Background(), s, now, false)
	require.NoError(t, err)

	assert.Equal(t, models.DispositionPublished, result.Disposition)
	require.NotNil(t, ensured)
	assert.Equal(t, models.ContentScheduleStatusPublished, ensured.Status)
	assert.Equal(t, now, ensured.ScheduledDate)
}

func TestOrchestratorImmediatePublishFallsBackToQueue(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	var created *models.ContentSchedule
	queue := &mockQueueStore{
		createFn: func(_ context.Context, s *models.ContentSchedule) error {
			created = s
			return nil
		},
	}
	gen := &mockGenerator{
		generateFn: func(_ context.Context, _ *GenerationRequest) (*GenerationResult, error) {
			return &GenerationResult{ContentID: uuid.New(), Title: "T", Cost: 0.01, Published: false}, nil
		},
	}

	s := testSchedule()
	s.AutoPublish = true
	s.PublishDelayHours = 0

	o := newTestOrchestrator(&mockRunStore{}, queue, gen, &mockAudit{})
	result, err := o.Run(context.Background(), s, now, false)
	require.NoError(t, err)

	assert.Equal(t, models.DispositionScheduled, result.Disposition)
	require.NotNil(t, created)
	assert.Equal(t, models.ContentScheduleStatusScheduled, created.Status)
	assert.Equal(t, now, created.ScheduledDate)
}

func TestOrchestratorBudgetDenied(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	generated := false
	gen := &mockGenerator{
		generateFn: func(_ context.Context, _ *GenerationRequest) (*GenerationResult, error) {
			generated = true
			return nil, nil
		},
	}
	audit := &mockAudit{}

	s := testSchedule()
	s.CostToday = 4.98

	o := newTestOrchestrator(&mockRunStore{}, &mockQueueStore{}, gen, audit)
	_, err := o.Run(context.Background(), s, now, false)

	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrBudgetExceeded))
	assert.False(t, generated)
	assert.True(t, audit.has(models.ActivityBudgetDenied))
}

func TestOrchestratorGenerationFailureReleasesReservation(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	released := false
	committed := false
	store := &mockRunStore{
		releaseFn: func(_ context.Context, _ uuid.UUID, _ float64) error {
			released = true
			return nil
		},
		commitFn: func(_ context.Context, _ uuid.UUID, _ float64, _ int) error {
			committed = true
			return nil
		},
	}
	gen := &mockGenerator{
		generateFn: func(_ context.Context, _ *GenerationRequest) (*GenerationResult, error) {
			return nil, errors.New("provider timeout")
		},
	}
	audit := &mockAudit{}

	o := newTestOrchestrator(store, &mockQueueStore{}, gen, audit)
	_, err := o.Run(context.Background(), testSchedule(), now, false)

	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrGenerationFailed))
	assert.True(t, released)
	assert.False(t, committed)
	assert.True(t, audit.has(models.ActivityGenerationFailed))
}

func TestOrchestratorClaimLost(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	store := &mockRunStore{
		claimFn: func(_ context.Context, _ uuid.UUID, _ time.Time, _ *time.Time) (bool, error) {
			return false, nil
		},
	}

	o := newTestOrchestrator(store, &mockQueueStore{}, &mockGenerator{}, &mockAudit{})
	_, err := o.Run(context.Background(), testSchedule(), now, false)
	assert.ErrorIs(t, err, models.ErrRunInProgress)
}

func TestOrchestratorInactiveSchedule(t *testing.T) {
	s := testSchedule()
	s.IsActive = false

	o := newTestOrchestrator(&mockRunStore{}, &mockQueueStore{}, &mockGenerator{}, &mockAudit{})
	_, err := o.Run(context.Background(), s, time.Now(), true)
	assert.ErrorIs(t, err, models.ErrScheduleInactive)
}

func TestOrchestratorConcurrentRunNowExclusion(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	var generations atomic.Int32
	gen := &mockGenerator{
		generateFn: func(_ context.Context, _ *GenerationRequest) (*GenerationResult, error) {
			generations.Add(1)
			time.Sleep(20 * time.Millisecond)
			return &GenerationResult{ContentID: uuid.New(), Title: "T", Cost: 0.01}, nil
		},
	}

	o := newTestOrchestrator(&mockRunStore{}, &mockQueueStore{}, gen, &mockAudit{})
	s := testSchedule()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = o.Run(context.Background(), s, now, true)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), generations.Load())

	inProgress := 0
	for _, err := range errs {
		if errors.Is(err, models.ErrRunInProgress) {
			inProgress++
		}
	}
	assert.Equal(t, 1, inProgress)
}

// Full pipeline check: a Tokyo morning schedule stores midnight UTC, fires at
// midnight UTC, and with immediate auto-publish yields a published entry.
func TestOrchestratorEndToEndTokyo(t *testing.T) {
	log := logger.NewForTesting()

	utcTime := ToUTCTimeOfDay("09:00", "Asia/Tokyo", log)
	assert.Equal(t, "00:00", utcTime)

	s := testSchedule()
	s.TimeOfDayUTC = utcTime
	s.LocalTime = "09:00"
	s.Timezone = "Asia/Tokyo"
	s.AutoPublish = true
	s.PublishDelayHours = 0

	now := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	require.True(t, IsDue(s, now, 5*time.Minute))

	var ensured *models.ContentSchedule
	queue := &mockQueueStore{
		ensurePublishedFn: func(_ context.Context, cs *models.ContentSchedule) error {
			ensured = cs
			return nil
		},
	}

	o := newTestOrchestrator(&mockRunStore{}, queue, &mockGenerator{}, &mockAudit{})
	result, err := o.Run(context.Background(), s, now, false)
	require.NoError(t, err)

	assert.Equal(t, models.DispositionPublished, result.Disposition)
	require.NotNil(t, ensured)
	assert.Equal(t, models.ContentScheduleStatusPublished, ensured.Status)
}
