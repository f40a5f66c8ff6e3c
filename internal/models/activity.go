package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity event types recorded by the pipeline
const (
	ActivityRunStarted       = "run_started"
	ActivityRunCompleted     = "run_completed"
	ActivityBudgetDenied     = "budget_denied"
	ActivityGenerationFailed = "generation_failed"
	ActivityPublishSucceeded = "publish_succeeded"
	ActivityPublishFailed    = "publish_failed"
	ActivityCountersReset    = "counters_reset"
	ActivityScheduleChanged  = "schedule_changed"
)

// ActivityLog is a fire-and-forget audit record
type ActivityLog struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Event     string    `json:"event" db:"event"`
	Metadata  JSONB     `json:"metadata,omitempty" db:"metadata"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
