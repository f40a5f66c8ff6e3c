package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
)

// ActivityRepository handles activity log database operations
type ActivityRepository struct {
	db DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create inserts an activity record
func (r *ActivityRepository) Create(ctx context.Context, a *models.ActivityLog) error {
	query := `
		INSERT INTO activity_logs (id, user_id, event, metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, a.ID, a.UserID, a.Event, a.Metadata).Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create activity log: %w", err)
	}

	return nil
}

// ListByUser retrieves recent activity for a user, newest first
func (r *ActivityRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.ActivityLog, error) {
	query := `
		SELECT id, user_id, event, metadata, created_at
		FROM activity_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity logs: %w", err)
	}
	defer rows.Close()

	logs := []*models.ActivityLog{}
	for rows.Next() {
		a := &models.ActivityLog{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.Event, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		logs = append(logs, a)
	}

	return logs, nil
}
