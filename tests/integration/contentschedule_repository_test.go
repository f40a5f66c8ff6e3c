package integration

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
	"github.com/JaxylViernes/wp-seo-autopilot/internal/repository/postgres"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/logger"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/testutil"
)

func seedContent(t *testing.T, s *IntegrationSuite, userID uuid.UUID) (*models.Site, *models.Content) {
	t.Helper()
	ctx := s.GetContext(t)
	fixtures := testutil.NewFixtureBuilder()

	sites := postgres.NewSiteRepository(s.DB.DB)
	site := fixtures.Site(userID)
	require.NoError(t, sites.Create(ctx, site))

	contents := postgres.NewContentRepository(s.DB.DB, logger.NewNop())
	content := fixtures.Content(userID, site.ID)
	require.NoError(t, contents.Create(ctx, content))

	return site, content
}

func TestContentScheduleRepository_DuplicateGuard(t *testing.T) {
	s := SetupSuite(t)
	defer s.ResetDatabase(t)
	ctx := s.GetContext(t)

	fixtures := testutil.NewFixtureBuilder()
	userID := uuid.New()
	site, content := seedContent(t, s, userID)

	repo := postgres.NewContentScheduleRepository(s.DB.DB)

	first := fixtures.ContentSchedule(userID, site.ID, content.ID)
	require.NoError(t, repo.Create(ctx, first))

	// A second non-terminal entry for the same content is rejected
	second := fixtures.ContentSchedule(userID, site.ID, content.ID)
	err := repo.Create(ctx, second)
	assert.ErrorIs(t, err, models.ErrDuplicateSchedule)

	// Once the first is cancelled, scheduling again is allowed
	require.NoError(t, repo.Cancel(ctx, userID, first.ID))
	third := fixtures.ContentSchedule(userID, site.ID, content.ID)
	assert.NoError(t, repo.Create(ctx, third))
}

func TestContentScheduleRepository_ClaimDue(t *testing.T) {
	s := SetupSuite(t)
	defer s.ResetDatabase(t)
	ctx := s.GetContext(t)

	fixtures := testutil.NewFixtureBuilder()
	userID := uuid.New()
	site, content := seedContent(t, s, userID)
	_, futureContent := seedContent(t, s, userID)

	repo := postgres.NewContentScheduleRepository(s.DB.DB)
	now := time.Now().UTC()

	due := fixtures.ContentSchedule(userID, site.ID, content.ID, func(cs *models.ContentSchedule) {
		cs.ScheduledDate = now.Add(-time.Minute)
	})
	require.NoError(t, repo.Create(ctx, due))

	future := fixtures.ContentSchedule(userID, site.ID, futureContent.ID, func(cs *models.ContentSchedule) {
		cs.ScheduledDate = now.Add(time.Hour)
	})
	require.NoError(t, repo.Create(ctx, future))

	claimed, err := repo.ClaimDue(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, due.ID, claimed[0].ID)
	assert.Equal(t, models.ContentScheduleStatusPublishing, claimed[0].Status)

	// Already claimed entries are not claimed twice
	claimed, err = repo.ClaimDue(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, claimed)
}

func TestContentScheduleRepository_FailureAndRetry(t *testing.T) {
	s := SetupSuite(t)
	defer s.ResetDatabase(t)
	ctx := s.GetContext(t)

	fixtures := testutil.NewFixtureBuilder()
	userID := uuid.New()
	site, content := seedContent(t, s, userID)

	repo := postgres.NewContentScheduleRepository(s.DB.DB)
	now := time.Now().UTC()

	entry := fixtures.ContentSchedule(userID, site.ID, content.ID, func(cs *models.ContentSchedule) {
		cs.ScheduledDate = now.Add(-time.Minute)
	})
	require.NoError(t, repo.Create(ctx, entry))

	claimed, err := repo.ClaimDue(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	require.NoError(t, repo.MarkFailed(ctx, entry.ID, "timeout talking to site"))

	got, err := repo.GetByID(ctx, userID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContentScheduleStatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Contains(t, *got.ErrorMessage, "timeout")

	// Requeue clears the error and makes the entry due again
	require.NoError(t, repo.Requeue(ctx, userID, entry.ID, now))

	got, err = repo.GetByID(ctx, userID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContentScheduleStatusScheduled, got.Status)
	assert.Nil(t, got.ErrorMessage)
}

func TestContentScheduleRepository_DuplicateGuardUnderConcurrency(t *testing.T) {
	s := SetupSuite(t)
	defer s.ResetDatabase(t)
	ctx := s.GetContext(t)

	fixtures := testutil.NewFixtureBuilder()
	userID := uuid.New()
	site, content := seedContent(t, s, userID)

	repo := postgres.NewContentScheduleRepository(s.DB.DB)

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Create(ctx, fixtures.ContentSchedule(userID, site.ID, content.ID))
		}()
	}
	wg.Wait()
	close(errs)

	var created, rejected int
	for err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, models.ErrDuplicateSchedule):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, created, "exactly one entry should win")
	assert.Equal(t, attempts-1, rejected)

	// The pending-entry uniqueness is enforced by the schema, not just the
	// insert guard
	_, err := s.DB.DB.ExecContext(ctx, `
		INSERT INTO content_schedules (id, user_id, site_id, content_id, scheduled_date, status)
		VALUES ($1, $2, $3, $4, NOW(), 'scheduled')`,
		uuid.New(), userID, site.ID, content.ID,
	)
	require.Error(t, err)
}
