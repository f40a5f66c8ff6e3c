package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/logger"
)

// ContentScheduleStore defines the queue persistence the service needs
type ContentScheduleStore interface {
	Create(ctx context.Context, s *models.ContentSchedule) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.ContentSchedule, error)
	List(ctx context.Context, userID uuid.UUID, siteID *uuid.UUID, status *models.ContentScheduleStatus, limit, offset int) ([]*models.ContentSchedule, int64, error)
	Requeue(ctx context.Context, userID, id uuid.UUID, scheduledDate time.Time) error
	Cancel(ctx context.Context, userID, id uuid.UUID) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// ContentResolver verifies ownership of content being queued manually
type ContentResolver interface {
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Content, error)
}

// ContentScheduleService manages the publication queue
type ContentScheduleService struct {
	queue    ContentScheduleStore
	contents ContentResolver
	log      *logger.Logger
}

// NewContentScheduleService creates a new content schedule service
func NewContentScheduleService(queue ContentScheduleStore, contents ContentResolver, log *logger.Logger) *ContentScheduleService {
	return &ContentScheduleService{queue: queue, contents: contents, log: log}
}

// Schedule queues existing content for publication at the given time.
// The target site comes from the content row itself so an entry can
// never point at a site the content does not belong to. Content that
// already has a pending entry is rejected.
func (s *ContentScheduleService) Schedule(ctx context.Context, userID uuid.UUID, req *models.ScheduleContentRequest) (*models.ContentSchedule, error) {
	content, err := s.contents.GetByID(ctx, userID, req.ContentID)
	if err != nil {
		return nil, err
	}

	entry := &models.ContentSchedule{
		ID:            uuid.New(),
		UserID:        userID,
		SiteID:        content.SiteID,
		ContentID:     content.ID,
		ScheduledDate: req.ScheduledDate.UTC(),
		Status:        models.ContentScheduleStatusScheduled,
		Title:         &content.Title,
	}

	if err := s.queue.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.log.Info("Content queued for publication",
		logger.String("content_id", content.ID.String()),
		logger.String("schedule_id", entry.ID.String()),
	)

	return entry, nil
}

// Get retrieves a queue entry owned by the user
func (s *ContentScheduleService) Get(ctx context.Context, userID, id uuid.UUID) (*models.ContentSchedule, error) {
	return s.queue.GetByID(ctx, userID, id)
}

// List retrieves the user's queue entries with pagination
func (s *ContentScheduleService) List(ctx context.Context, userID uuid.UUID, siteID *uuid.UUID, status *models.ContentScheduleStatus, page, pageSize int) (*models.ContentScheduleListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	entries, total, err := s.queue.List(ctx, userID, siteID, status, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	return &models.ContentScheduleListResponse{
		Schedules: entries,
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
	}, nil
}

// Retry moves a failed entry back to scheduled for another publish attempt
func (s *ContentScheduleService) Retry(ctx context.Context, userID, id uuid.UUID) error {
	return s.queue.Requeue(ctx, userID, id, time.Now().UTC())
}

// Cancel withdraws a pending entry
func (s *ContentScheduleService) Cancel(ctx context.Context, userID, id uuid.UUID) error {
	return s.queue.Cancel(ctx, userID, id)
}

// Delete removes an entry that never reached published
func (s *ContentScheduleService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.queue.Delete(ctx, userID, id)
}
