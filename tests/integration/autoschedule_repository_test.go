package integration

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
	"github.com/JaxylViernes/wp-seo-autopilot/internal/repository/postgres"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/testutil"
)

func TestAutoScheduleRepository_CreateAndGet(t *testing.T) {
	s := SetupSuite(t)
	defer s.ResetDatabase(t)
	ctx := s.GetContext(t)

	fixtures := testutil.NewFixtureBuilder()
	userID := uuid.New()

	sites := postgres.NewSiteRepository(s.DB.DB)
	site := fixtures.Site(userID)
	require.NoError(t, sites.Create(ctx, site))

	repo := postgres.NewAutoScheduleRepository(s.DB.DB)
	schedule := fixtures.AutoSchedule(userID, site.ID)
	require.NoError(t, repo.Create(ctx, schedule))

	got, err := repo.GetByID(ctx, userID, schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, schedule.Name, got.Name)
	assert.Equal(t, "09:00", got.TimeOfDayUTC)
	assert.Equal(t, models.StringList{"Topic A", "Topic B", "Topic C"}, got.Topics)
	assert.True(t, got.IsActive)

	// Other owners must not see it
	_, err = repo.GetByID(ctx, uuid.New(), schedule.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAutoScheduleRepository_ClaimRunWindow(t *testing.T) {
	s := SetupSuite(t)
	defer s.ResetDatabase(t)
	ctx := s.GetContext(t)

	fixtures := testutil.NewFixtureBuilder()
	userID := uuid.New()

	sites := postgres.NewSiteRepository(s.DB.DB)
	site := fixtures.Site(userID)
	require.NoError(t, sites.Create(ctx, site))

	repo := postgres.NewAutoScheduleRepository(s.DB.DB)
	schedule := fixtures.AutoSchedule(userID, site.ID)
	require.NoError(t, repo.Create(ctx, schedule))

	now := time.Now().UTC().Truncate(time.Second)
	windowStart := now.Add(-time.Minute)

	claimed, err := repo.ClaimRun(ctx, schedule.ID, now, &windowStart)
	require.NoError(t, err)
	assert.True(t, claimed, "first claim of the window should succeed")

	claimed, err = repo.ClaimRun(ctx, schedule.ID, now, &windowStart)
	require.NoError(t, err)
	assert.False(t, claimed, "second claim of the same window should fail")

	// A manual claim (nil notBefore) ignores the window condition
	claimed, err = repo.ClaimRun(ctx, schedule.ID, now.Add(time.Second), nil)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestAutoScheduleRepository_BudgetReservation(t *testing.T) {
	s := SetupSuite(t)
	defer s.ResetDatabase(t)
	ctx := s.GetContext(t)

	fixtures := testutil.NewFixtureBuilder()
	userID := uuid.New()

	sites := postgres.NewSiteRepository(s.DB.DB)
	site := fixtures.Site(userID)
	require.NoError(t, sites.Create(ctx, site))

	repo := postgres.NewAutoScheduleRepository(s.DB.DB)
	schedule := fixtures.AutoSchedule(userID, site.ID, func(a *models.AutoSchedule) {
		a.MaxDailyCost = 0.10
		a.MaxMonthlyPost = 2
	})
	require.NoError(t, repo.Create(ctx, schedule))

	reserved, err := repo.ReserveBudget(ctx, schedule.ID, 0.05)
	require.NoError(t, err)
	assert.True(t, reserved)

	// 0.05 + 0.06 would breach the 0.10 daily cap
	reserved, err = repo.ReserveBudget(ctx, schedule.ID, 0.06)
	require.NoError(t, err)
	assert.False(t, reserved)

	require.NoError(t, repo.ReleaseBudget(ctx, schedule.ID, 0.05))

	got, err := repo.GetByID(ctx, userID, schedule.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, got.CostToday, 1e-9)
	assert.Equal(t, 0, got.PostsThisMonth)
}

func TestAutoScheduleRepository_CommitRun(t *testing.T) {
	s := SetupSuite(t)
	defer s.ResetDatabase(t)
	ctx := s.GetContext(t)

	fixtures := testutil.NewFixtureBuilder()
	userID := uuid.New()

	sites := postgres.NewSiteRepository(s.DB.DB)
	site := fixtures.Site(userID)
	require.NoError(t, sites.Create(ctx, site))

	repo := postgres.NewAutoScheduleRepository(s.DB.DB)
	schedule := fixtures.AutoSchedule(userID, site.ID)
	require.NoError(t, repo.Create(ctx, schedule))

	reserved, err := repo.ReserveBudget(ctx, schedule.ID, 0.05)
	require.NoError(t, err)
	require.True(t, reserved)

	// Actual cost 0.03 replaces the 0.05 estimate
	require.NoError(t, repo.CommitRun(ctx, schedule.ID, 0.03-0.05, 1))

	got, err := repo.GetByID(ctx, userID, schedule.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.03, got.CostToday, 1e-9)
	assert.Equal(t, 1, got.PostsThisMonth)
	assert.Equal(t, 1, got.NextTopicIndex)
}

func TestAutoScheduleRepository_SoftDeleteHidesFromActive(t *testing.T) {
	s := SetupSuite(t)
	defer s.ResetDatabase(t)
	ctx := s.GetContext(t)

	fixtures := testutil.NewFixtureBuilder()
	userID := uuid.New()

	sites := postgres.NewSiteRepository(s.DB.DB)
	site := fixtures.Site(userID)
	require.NoError(t, sites.Create(ctx, site))

	repo := postgres.NewAutoScheduleRepository(s.DB.DB)
	schedule := fixtures.AutoSchedule(userID, site.ID)
	require.NoError(t, repo.Create(ctx, schedule))

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)

	require.NoError(t, repo.SoftDelete(ctx, userID, schedule.ID))

	active, err = repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = repo.GetByID(ctx, userID, schedule.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAutoScheduleRepository_CounterResetsAreIdempotent(t *testing.T) {
	s := SetupSuite(t)
	defer s.ResetDatabase(t)
	ctx := s.GetContext(t)

	fixtures := testutil.NewFixtureBuilder()
	userID := uuid.New()

	sites := postgres.NewSiteRepository(s.DB.DB)
	site := fixtures.Site(userID)
	require.NoError(t, sites.Create(ctx, site))

	repo := postgres.NewAutoScheduleRepository(s.DB.DB)
	now := time.Now().UTC()
	yesterday := now.AddDate(0, 0, -1)
	lastMonth := now.AddDate(0, -1, 0)

	// Stale counters from the previous day and month
	stale := fixtures.AutoSchedule(userID, site.ID, func(a *models.AutoSchedule) {
		a.CostToday = 1.5
		a.PostsThisMonth = 3
		a.LastCostReset = &yesterday
		a.LastPostsReset = &lastMonth
	})
	require.NoError(t, repo.Create(ctx, stale))

	// Already reset today and this month, must be left untouched
	fresh := fixtures.AutoSchedule(userID, site.ID, func(a *models.AutoSchedule) {
		a.Name = "Fresh Schedule"
		a.CostToday = 0.75
		a.PostsThisMonth = 2
	})
	require.NoError(t, repo.Create(ctx, fresh))

	daily, err := repo.ResetDailyCounters(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{userID}, daily)

	monthly, err := repo.ResetMonthlyCounters(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{userID}, monthly)

	got, err := repo.GetByID(ctx, userID, stale.ID)
	require.NoError(t, err)
	assert.Zero(t, got.CostToday)
	assert.Zero(t, got.PostsThisMonth)

	got, err = repo.GetByID(ctx, userID, fresh.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, got.CostToday, 1e-9)
	assert.Equal(t, 2, got.PostsThisMonth)

	// A second pass within the same period is a no-op
	daily, err = repo.ResetDailyCounters(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, daily)

	monthly, err = repo.ResetMonthlyCounters(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, monthly)

	got, err = repo.GetByID(ctx, userID, fresh.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, got.CostToday, 1e-9)
	assert.Equal(t, 2, got.PostsThisMonth)
}
