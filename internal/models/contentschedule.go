package models

import (
	"time"

	"github.com/google/uuid"
)

// ContentScheduleStatus represents the lifecycle state of a queue entry
type ContentScheduleStatus string

const (
	ContentScheduleStatusDraft      ContentScheduleStatus = "draft"
	ContentScheduleStatusScheduled  ContentScheduleStatus = "scheduled"
	ContentScheduleStatusPublishing ContentScheduleStatus = "publishing"
	ContentScheduleStatusPublished  ContentScheduleStatus = "published"
	ContentScheduleStatusFailed     ContentScheduleStatus = "failed"
	ContentScheduleStatusCancelled  ContentScheduleStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions by the
// publication worker
func (s ContentScheduleStatus) Terminal() bool {
	switch s {
	case ContentScheduleStatusPublished, ContentScheduleStatusFailed, ContentScheduleStatusCancelled:
		return true
	}
	return false
}

// ContentSchedule is one queued or published unit of content, tied 1:1 to a
// generated content item
type ContentSchedule struct {
	ID            uuid.UUID             `json:"id" db:"id"`
	UserID        uuid.UUID             `json:"user_id" db:"user_id"`
	SiteID        uuid.UUID             `json:"site_id" db:"site_id"`
	ContentID     uuid.UUID             `json:"content_id" db:"content_id"`
	ScheduledDate time.Time             `json:"scheduled_date" db:"scheduled_date"`
	Status        ContentScheduleStatus `json:"status" db:"status"`
	Topic         *string               `json:"topic,omitempty" db:"topic"`
	Title         *string               `json:"title,omitempty" db:"title"`
	ErrorMessage  *string               `json:"error_message,omitempty" db:"error_message"`
	Metadata      JSONB                 `json:"metadata,omitempty" db:"metadata"`
	CreatedAt     time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at" db:"updated_at"`
}

// ScheduleContentRequest represents a manual "schedule existing content" action
type ScheduleContentRequest struct {
	ContentID     uuid.UUID `json:"content_id" validate:"required"`
	ScheduledDate time.Time `json:"scheduled_date" validate:"required"`
}

// ContentScheduleListResponse represents the response for listing queue entries
type ContentScheduleListResponse struct {
	Schedules []*ContentSchedule `json:"schedules"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	PageSize  int                `json:"page_size"`
}
