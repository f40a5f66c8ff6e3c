package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
)

// DB is the database surface the repositories need. Satisfied by *sql.DB and
// by the circuit-breaker wrapper in pkg/database.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

const autoScheduleColumns = `
	id, user_id, site_id, name,
	frequency, time_of_day_utc, local_time, timezone, custom_days, cron_expr,
	topics, keywords, tone, word_count, brand_voice, target_audience,
	eeat_compliance, ai_provider, include_images, image_count, image_style,
	topic_rotation, next_topic_index,
	auto_publish, publish_delay_hours,
	max_daily_cost, max_monthly_posts, cost_today, posts_this_month,
	last_run, last_cost_reset, last_posts_reset,
	is_active, deleted_at, created_at, updated_at`

// AutoScheduleRepository handles auto schedule database operations
type AutoScheduleRepository struct {
	db DB
}

// NewAutoScheduleRepository creates a new auto schedule repository
func NewAutoScheduleRepository(db DB) *AutoScheduleRepository {
	return &AutoScheduleRepository{db: db}
}

func scanAutoSchedule(row interface{ Scan(...interface{}) error }) (*models.AutoSchedule, error) {
	s := &models.AutoSchedule{}
	err := row.Scan(
		&s.ID, &s.UserID, &s.SiteID, &s.Name,
		&s.Frequency, &s.TimeOfDayUTC, &s.LocalTime, &s.Timezone, &s.CustomDays, &s.CronExpr,
		&s.Topics, &s.Keywords, &s.Tone, &s.WordCount, &s.BrandVoice, &s.TargetAudience,
		&s.EEATCompliance, &s.AIProvider, &s.IncludeImages, &s.ImageCount, &s.ImageStyle,
		&s.TopicRotation, &s.NextTopicIndex,
		&s.AutoPublish, &s.PublishDelayHours,
		&s.MaxDailyCost, &s.MaxMonthlyPost, &s.CostToday, &s.PostsThisMonth,
		&s.LastRun, &s.LastCostReset, &s.LastPostsReset,
		&s.IsActive, &s.DeletedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create creates a new auto schedule
func (r *AutoScheduleRepository) Create(ctx context.Context, s *models.AutoSchedule) error {
	query := `
		INSERT INTO auto_schedules (
			id, user_id, site_id, name,
			frequency, time_of_day_utc, local_time, timezone, custom_days, cron_expr,
			topics, keywords, tone, word_count, brand_voice, target_audience,
			eeat_compliance, ai_provider, include_images, image_count, image_style,
			topic_rotation, next_topic_index,
			auto_publish, publish_delay_hours,
			max_daily_cost, max_monthly_posts,
			is_active
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21,
			$22, $23,
			$24, $25,
			$26, $27,
			$28
		)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx, query,
		s.ID, s.UserID, s.SiteID, s.Name,
		s.Frequency, s.TimeOfDayUTC, s.LocalTime, s.Timezone, s.CustomDays, s.CronExpr,
		s.Topics, s.Keywords, s.Tone, s.WordCount, s.BrandVoice, s.TargetAudience,
		s.EEATCompliance, s.AIProvider, s.IncludeImages, s.ImageCount, s.ImageStyle,
		s.TopicRotation, s.NextTopicIndex,
		s.AutoPublish, s.PublishDelayHours,
		s.MaxDailyCost, s.MaxMonthlyPost,
		s.IsActive,
	).Scan(&s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create auto schedule: %w", err)
	}

	return nil
}

// GetByID retrieves a schedule owned by the given user
func (r *AutoScheduleRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.AutoSchedule, error) {
	query := `
		SELECT ` + autoScheduleColumns + `
		FROM auto_schedules
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`

	s, err := scanAutoSchedule(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get auto schedule: %w", err)
	}

	return s, nil
}

// List retrieves a user's schedules, optionally filtered by site, with pagination
func (r *AutoScheduleRepository) List(ctx context.Context, userID uuid.UUID, siteID *uuid.UUID, limit, offset int) ([]*models.AutoSchedule, int64, error) {
	var total int64
	countQuery := `
		SELECT COUNT(*) FROM auto_schedules
		WHERE user_id = $1 AND deleted_at IS NULL AND ($2::uuid IS NULL OR site_id = $2)`
	if err := r.db.QueryRowContext(ctx, countQuery, userID, siteID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count auto schedules: %w", err)
	}

	query := `
		SELECT ` + autoScheduleColumns + `
		FROM auto_schedules
		WHERE user_id = $1 AND deleted_at IS NULL AND ($2::uuid IS NULL OR site_id = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.db.QueryContext(ctx, query, userID, siteID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query auto schedules: %w", err)
	}
	defer rows.Close()

	schedules := []*models.AutoSchedule{}
	for rows.Next() {
		s, err := scanAutoSchedule(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan auto schedule: %w", err)
		}
		schedules = append(schedules, s)
	}

	return schedules, total, nil
}

// ListActive retrieves every active schedule across users. Used by the
// polling worker, which evaluates due-ness in memory.
func (r *AutoScheduleRepository) ListActive(ctx context.Context) ([]*models.AutoSchedule, error) {
	query := `
		SELECT ` + autoScheduleColumns + `
		FROM auto_schedules
		WHERE is_active = true AND deleted_at IS NULL
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active schedules: %w", err)
	}
	defer rows.Close()

	schedules := []*models.AutoSchedule{}
	for rows.Next() {
		s, err := scanAutoSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan auto schedule: %w", err)
		}
		schedules = append(schedules, s)
	}

	return schedules, nil
}

// Update persists mutable schedule settings. Counter and run state fields are
// updated only through their dedicated atomic operations.
func (r *AutoScheduleRepository) Update(ctx context.Context, s *models.AutoSchedule) error {
	query := `
		UPDATE auto_schedules
		SET name = $3,
		    frequency = $4,
		    time_of_day_utc = $5,
		    local_time = $6,
		    timezone = $7,
		    custom_days = $8,
		    cron_expr = $9,
		    topics = $10,
		    keywords = $11,
		    tone = $12,
		    word_count = $13,
		    brand_voice = $14,
		    target_audience = $15,
		    eeat_compliance = $16,
		    ai_provider = $17,
		    include_images = $18,
		    image_count = $19,
		    image_style = $20,
		    topic_rotation = $21,
		    next_topic_index = $22,
		    auto_publish = $23,
		    publish_delay_hours = $24,
		    max_daily_cost = $25,
		    max_monthly_posts = $26,
		    is_active = $27,
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(
		ctx, query,
		s.ID, s.UserID, s.Name,
		s.Frequency, s.TimeOfDayUTC, s.LocalTime, s.Timezone, s.CustomDays, s.CronExpr,
		s.Topics, s.Keywords, s.Tone, s.WordCount, s.BrandVoice, s.TargetAudience,
		s.EEATCompliance, s.AIProvider, s.IncludeImages, s.ImageCount, s.ImageStyle,
		s.TopicRotation, s.NextTopicIndex,
		s.AutoPublish, s.PublishDelayHours,
		s.MaxDailyCost, s.MaxMonthlyPost,
		s.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update auto schedule: %w", err)
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

// SoftDelete marks a schedule deleted without removing its history
func (r *AutoScheduleRepository) SoftDelete(ctx context.Context, userID, id uuid.UUID) error {
	query := `
		UPDATE auto_schedules
		SET deleted_at = NOW(), is_active = false, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete auto schedule: %w", err)
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

// SetActive toggles a schedule's active flag
func (r *AutoScheduleRepository) SetActive(ctx context.Context, userID, id uuid.UUID, active bool) error {
	query := `
		UPDATE auto_schedules
		SET is_active = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, userID, active)
	if err != nil {
		return fmt.Errorf("failed to toggle auto schedule: %w", err)
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

// ClaimRun atomically stamps last_run so a racing worker observes the claim
// and skips. A nil notBefore claims unconditionally (manual runs).
func (r *AutoScheduleRepository) ClaimRun(ctx context.Context, id uuid.UUID, runAt time.Time, notBefore *time.Time) (bool, error) {
	query := `
		UPDATE auto_schedules
		SET last_run = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		  AND ($3::timestamptz IS NULL OR last_run IS NULL OR last_run < $3)`

	result, err := r.db.ExecContext(ctx, query, id, runAt, notBefore)
	if err != nil {
		return false, fmt.Errorf("failed to claim run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows == 1, nil
}

// ReserveBudget reserves the estimated cost and a post slot in a single
// conditional update, so two runs can never both pass against stale counters.
// A zero cap disables that cap.
func (r *AutoScheduleRepository) ReserveBudget(ctx context.Context, id uuid.UUID, estimatedCost float64) (bool, error) {
	query := `
		UPDATE auto_schedules
		SET cost_today = cost_today + $2,
		    posts_this_month = posts_this_month + 1,
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		  AND (max_daily_cost <= 0 OR cost_today + $2 <= max_daily_cost)
		  AND (max_monthly_posts <= 0 OR posts_this_month < max_monthly_posts)`

	result, err := r.db.ExecContext(ctx, query, id, estimatedCost)
	if err != nil {
		return false, fmt.Errorf("failed to reserve budget: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows == 1, nil
}

// ReleaseBudget undoes a reservation after a failed run, clamping at zero
func (r *AutoScheduleRepository) ReleaseBudget(ctx context.Context, id uuid.UUID, estimatedCost float64) error {
	query := `
		UPDATE auto_schedules
		SET cost_today = GREATEST(cost_today - $2, 0),
		    posts_this_month = GREATEST(posts_this_month - 1, 0),
		    updated_at = NOW()
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, estimatedCost); err != nil {
		return fmt.Errorf("failed to release budget reservation: %w", err)
	}

	return nil
}

// CommitRun replaces the reserved estimate with the actual cost and advances
// the topic cursor
func (r *AutoScheduleRepository) CommitRun(ctx context.Context, id uuid.UUID, costDelta float64, nextTopicIndex int) error {
	query := `
		UPDATE auto_schedules
		SET cost_today = GREATEST(cost_today + $2, 0),
		    next_topic_index = $3,
		    updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, costDelta, nextTopicIndex)
	if err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
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

// ResetDailyCounters zeroes cost_today for schedules whose reset date is
// before the current UTC day, returning the owner of each reset schedule.
// Keying on last_cost_reset makes a second call within the same day a no-op.
func (r *AutoScheduleRepository) ResetDailyCounters(ctx context.Context, nowUTC time.Time) ([]uuid.UUID, error) {
	query := `
		UPDATE auto_schedules
		SET cost_today = 0,
		    last_cost_reset = $1::date,
		    updated_at = NOW()
		WHERE deleted_at IS NULL AND is_active = true
		  AND (last_cost_reset IS NULL OR last_cost_reset < $1::date)
		RETURNING user_id`

	owners, err := r.resetOwners(ctx, query, nowUTC)
	if err != nil {
		return nil, fmt.Errorf("failed to reset daily counters: %w", err)
	}
	return owners, nil
}

// ResetMonthlyCounters zeroes posts_this_month once per UTC calendar month,
// returning the owner of each reset schedule.
func (r *AutoScheduleRepository) ResetMonthlyCounters(ctx context.Context, nowUTC time.Time) ([]uuid.UUID, error) {
	query := `
		UPDATE auto_schedules
		SET posts_this_month = 0,
		    last_posts_reset = date_trunc('month', $1::date),
		    updated_at = NOW()
		WHERE deleted_at IS NULL AND is_active = true
		  AND (last_posts_reset IS NULL OR last_posts_reset < date_trunc('month', $1::date))
		RETURNING user_id`

	owners, err := r.resetOwners(ctx, query, nowUTC)
	if err != nil {
		return nil, fmt.Errorf("failed to reset monthly counters: %w", err)
	}
	return owners, nil
}

func (r *AutoScheduleRepository) resetOwners(ctx context.Context, query string, nowUTC time.Time) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, query, nowUTC.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owners []uuid.UUID
	for rows.Next() {
		var owner uuid.UUID
		if err := rows.Scan(&owner); err != nil {
			return nil, err
		}
		owners = append(owners, owner)
	}
	return owners, rows.Err()
}
