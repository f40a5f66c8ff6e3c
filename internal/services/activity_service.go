package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/logger"
)

// ActivityStore defines the activity log persistence the service needs
type ActivityStore interface {
	Create(ctx context.Context, a *models.ActivityLog) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.ActivityLog, error)
}

// ActivityService records audit events. Recording is fire-and-forget: a
// failed write is logged and never propagates to the calling operation.
type ActivityService struct {
	store ActivityStore
	log   *logger.Logger
}

// NewActivityService creates a new activity service
func NewActivityService(store ActivityStore, log *logger.Logger) *ActivityService {
	return &ActivityService{store: store, log: log}
}

// Record writes an activity event, absorbing any failure
func (s *ActivityService) Record(ctx context.Context, userID uuid.UUID, event string, metadata models.JSONB) {
	entry := &models.ActivityLog{
		ID:       uuid.New(),
		UserID:   userID,
		Event:    event,
		Metadata: metadata,
	}

	if err := s.store.Create(ctx, entry); err != nil {
		s.log.Warn("Failed to record activity event",
			logger.String("event", event),
			logger.Err(err),
		)
	}
}

// List retrieves recent activity for a user
func (s *ActivityService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.ActivityLog, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListByUser(ctx, userID, limit, offset)
}
