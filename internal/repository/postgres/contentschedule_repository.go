package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
)

const contentScheduleColumns = `
	id, user_id, site_id, content_id, scheduled_date, status,
	topic, title, error_message, metadata, created_at, updated_at`

// ContentScheduleRepository handles publication queue database operations
type ContentScheduleRepository struct {
	db DB
}

// NewContentScheduleRepository creates a new content schedule repository
func NewContentScheduleRepository(db DB) *ContentScheduleRepository {
	return &ContentScheduleRepository{db: db}
}

func scanContentSchedule(row interface{ Scan(...interface{}) error }) (*models.ContentSchedule, error) {
	s := &models.ContentSchedule{}
	err := row.Scan(
		&s.ID, &s.UserID, &s.SiteID, &s.ContentID, &s.ScheduledDate, &s.Status,
		&s.Topic, &s.Title, &s.ErrorMessage, &s.Metadata, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a queue entry, rejecting a second pending entry for the same
// content item. The NOT EXISTS check gives a clean rejection in the common
// case; the partial unique index on pending entries closes the race between
// concurrent inserts.
func (r *ContentScheduleRepository) Create(ctx context.Context, s *models.ContentSchedule) error {
	query := `
		INSERT INTO content_schedules (
			id, user_id, site_id, content_id, scheduled_date, status,
			topic, title, metadata
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9
		WHERE NOT EXISTS (
			SELECT 1 FROM content_schedules
			WHERE content_id = $4 AND status IN ('scheduled', 'publishing')
		)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx, query,
		s.ID, s.UserID, s.SiteID, s.ContentID, s.ScheduledDate, s.Status,
		s.Topic, s.Title, s.Metadata,
	).Scan(&s.CreatedAt, &s.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
		return models.ErrDuplicateSchedule
	}
	if err != nil {
		return fmt.Errorf("failed to create content schedule: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// EnsurePublished records a published entry for the content unless any entry
// for it already exists. Idempotent across retries of the same run.
func (r *ContentScheduleRepository) EnsurePublished(ctx context.Context, s *models.ContentSchedule) error {
	query := `
		INSERT INTO content_schedules (
			id, user_id, site_id, content_id, scheduled_date, status,
			topic, title, metadata
		)
		SELECT $1, $2, $3, $4, $5, 'published', $6, $7, $8
		WHERE NOT EXISTS (
			SELECT 1 FROM content_schedules WHERE content_id = $4
		)`

	if _, err := r.db.ExecContext(
		ctx, query,
		s.ID, s.UserID, s.SiteID, s.ContentID, s.ScheduledDate,
		s.Topic, s.Title, s.Metadata,
	); err != nil {
		return fmt.Errorf("failed to record published schedule: %w", err)
	}

	return nil
}

// GetByID retrieves a queue entry owned by the given user
func (r *ContentScheduleRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.ContentSchedule, error) {
	query := `
		SELECT ` + contentScheduleColumns + `
		FROM content_schedules
		WHERE id = $1 AND user_id = $2`

	s, err := scanContentSchedule(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content schedule: %w", err)
	}

	return s, nil
}

// List retrieves a user's queue entries, optionally filtered by site and
// status, newest scheduled first
func (r *ContentScheduleRepository) List(ctx context.Context, userID uuid.UUID, siteID *uuid.UUID, status *models.ContentScheduleStatus, limit, offset int) ([]*models.ContentSchedule, int64, error) {
	var total int64
	countQuery := `
		SELECT COUNT(*) FROM content_schedules
		WHERE user_id = $1
		  AND ($2::uuid IS NULL OR site_id = $2)
		  AND ($3::text IS NULL OR status = $3)`
	if err := r.db.QueryRowContext(ctx, countQuery, userID, siteID, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count content schedules: %w", err)
	}

	query := `
		SELECT ` + contentScheduleColumns + `
		FROM content_schedules
		WHERE user_id = $1
		  AND ($2::uuid IS NULL OR site_id = $2)
		  AND ($3::text IS NULL OR status = $3)
		ORDER BY scheduled_date DESC
		LIMIT $4 OFFSET $5`

	rows, err := r.db.QueryContext(ctx, query, userID, siteID, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query content schedules: %w", err)
	}
	defer rows.Close()

	schedules := []*models.ContentSchedule{}
	for rows.Next() {
		s, err := scanContentSchedule(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan content schedule: %w", err)
		}
		schedules = append(schedules, s)
	}

	return schedules, total, nil
}

// ClaimDue atomically moves due scheduled entries to publishing and returns
// them, so concurrent workers never publish the same entry twice.
func (r *ContentScheduleRepository) ClaimDue(ctx context.Context, nowUTC time.Time, limit int) ([]*models.ContentSchedule, error) {
	query := `
		UPDATE content_schedules
		SET status = 'publishing', updated_at = NOW()
		WHERE id IN (
			SELECT id FROM content_schedules
			WHERE status = 'scheduled' AND scheduled_date <= $1
			ORDER BY scheduled_date ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + contentScheduleColumns

	rows, err := r.db.QueryContext(ctx, query, nowUTC.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim due content schedules: %w", err)
	}
	defer rows.Close()

	schedules := []*models.ContentSchedule{}
	for rows.Next() {
		s, err := scanContentSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content schedule: %w", err)
		}
		schedules = append(schedules, s)
	}

	return schedules, nil
}

// MarkPublished transitions a publishing entry to published
func (r *ContentScheduleRepository) MarkPublished(ctx context.Context, id uuid.UUID) error {
	return r.transition(ctx, id, models.ContentScheduleStatusPublishing, models.ContentScheduleStatusPublished, nil)
}

// MarkFailed transitions a publishing entry to failed and records the error
func (r *ContentScheduleRepository) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	return r.transition(ctx, id, models.ContentScheduleStatusPublishing, models.ContentScheduleStatusFailed, &message)
}

// Requeue moves a failed entry back to scheduled for an explicit retry
func (r *ContentScheduleRepository) Requeue(ctx context.Context, userID, id uuid.UUID, scheduledDate time.Time) error {
	query := `
		UPDATE content_schedules
		SET status = 'scheduled', scheduled_date = $3, error_message = NULL, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND status = 'failed'`

	result, err := r.db.ExecContext(ctx, query, id, userID, scheduledDate)
	if err != nil {
		return fmt.Errorf("failed to requeue content schedule: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrNotFound
	}

	return nil
}

// Cancel marks a pending entry cancelled
func (r *ContentScheduleRepository) Cancel(ctx context.Context, userID, id uuid.UUID) error {
	query := `
		UPDATE content_schedules
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND status IN ('draft', 'scheduled')`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to cancel content schedule: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrNotFound
	}

	return nil
}

// Delete removes a queue entry that never reached published
func (r *ContentScheduleRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `
		DELETE FROM content_schedules
		WHERE id = $1 AND user_id = $2 AND status <> 'published'`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete content schedule: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *ContentScheduleRepository) transition(ctx context.Context, id uuid.UUID, from, to models.ContentScheduleStatus, message *string) error {
	query := `
		UPDATE content_schedules
		SET status = $3, error_message = $4, updated_at = NOW()
		WHERE id = $1 AND status = $2`

	result, err := r.db.ExecContext(ctx, query, id, from, to, message)
	if err != nil {
		return fmt.Errorf("failed to transition content schedule to %s: %w", to, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrNotFound
	}

	return nil
}
