package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record is missing or not owned by the caller
	ErrNotFound = errors.New("not found")

	// ErrBudgetExceeded is returned when a run would breach a daily or monthly cap
	ErrBudgetExceeded = errors.New("budget exceeded")

	// ErrGenerationFailed is returned when the generation collaborator fails
	ErrGenerationFailed = errors.New("content generation failed")

	// ErrPublishFailed is returned when the publish collaborator fails
	ErrPublishFailed = errors.New("publish failed")

	// ErrDuplicateSchedule is returned when a content item already has a
	// pending queue entry
	ErrDuplicateSchedule = errors.New("content already scheduled")

	// ErrScheduleInactive is returned when a manual run targets a paused schedule
	ErrScheduleInactive = errors.New("schedule is not active")

	// ErrRunInProgress is returned when a run is already executing for the schedule
	ErrRunInProgress = errors.New("run already in progress")
)

// BudgetError carries the cap that would be breached
type BudgetError struct {
	ScheduleID string
	Reason     string // "daily_cost" or "monthly_posts"
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("budget exceeded for schedule %s: %s cap reached", e.ScheduleID, e.Reason)
}

func (e *BudgetError) Unwrap() error {
	return ErrBudgetExceeded
}
