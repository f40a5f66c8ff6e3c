package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/engine"
	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/logger"
)

// AutoScheduleStore defines the schedule persistence the service needs
type AutoScheduleStore interface {
	Create(ctx context.Context, s *models.AutoSchedule) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.AutoSchedule, error)
	List(ctx context.Context, userID uuid.UUID, siteID *uuid.UUID, limit, offset int) ([]*models.AutoSchedule, int64, error)
	Update(ctx context.Context, s *models.AutoSchedule) error
	SoftDelete(ctx context.Context, userID, id uuid.UUID) error
	SetActive(ctx context.Context, userID, id uuid.UUID, active bool) error
}

// SiteResolver confirms site ownership before a schedule is attached to it
type SiteResolver interface {
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Site, error)
}

// ScheduleRunner executes one run of a schedule
type ScheduleRunner interface {
	Run(ctx context.Context, schedule *models.AutoSchedule, nowUTC time.Time, manual bool) (*models.RunResult, error)
}

// ActivityRecorder records fire-and-forget audit events
type ActivityRecorder interface {
	Record(ctx context.Context, userID uuid.UUID, event string, metadata models.JSONB)
}

// AutoScheduleService manages recurring content schedules
type AutoScheduleService struct {
	schedules AutoScheduleStore
	sites     SiteResolver
	runner    ScheduleRunner
	activity  ActivityRecorder
	log       *logger.Logger
}

// NewAutoScheduleService creates a new auto schedule service
func NewAutoScheduleService(
	schedules AutoScheduleStore,
	sites SiteResolver,
	runner ScheduleRunner,
	activity ActivityRecorder,
	log *logger.Logger,
) *AutoScheduleService {
	return &AutoScheduleService{
		schedules: schedules,
		sites:     sites,
		runner:    runner,
		activity:  activity,
		log:       log,
	}
}

// Create validates and stores a new schedule. The configured local time is
// converted once to a canonical UTC time of day; the local time and zone are
// kept for display.
func (s *AutoScheduleService) Create(ctx context.Context, userID uuid.UUID, req *models.CreateAutoScheduleRequest) (*models.AutoSchedule, error) {
	if _, err := s.sites.GetByID(ctx, userID, req.SiteID); err != nil {
		return nil, fmt.Errorf("site lookup failed: %w", err)
	}
	if err := validateCadence(models.Frequency(req.Frequency), req.CustomDays, req.CronExpr); err != nil {
		return nil, err
	}

	schedule := &models.AutoSchedule{
		ID:     uuid.New(),
		UserID: userID,
		SiteID: req.SiteID,
		Name:   req.Name,

		Frequency:    models.Frequency(req.Frequency),
		TimeOfDayUTC: engine.ToUTCTimeOfDay(req.LocalTime, req.Timezone, s.log),
		LocalTime:    req.LocalTime,
		Timezone:     req.Timezone,
		CustomDays:   models.IntList(req.CustomDays),

		Topics:         models.StringList(req.Topics),
		Keywords:       req.Keywords,
		Tone:           req.Tone,
		WordCount:      req.WordCount,
		BrandVoice:     req.BrandVoice,
		TargetAudience: req.TargetAudience,
		EEATCompliance: req.EEATCompliance,
		AIProvider:     req.AIProvider,
		IncludeImages:  req.IncludeImages,
		ImageCount:     req.ImageCount,
		ImageStyle:     req.ImageStyle,

		TopicRotation: models.TopicRotation(req.TopicRotation),

		AutoPublish:       req.AutoPublish,
		PublishDelayHours: req.PublishDelay,

		MaxDailyCost:   req.MaxDailyCost,
		MaxMonthlyPost: req.MaxMonthlyPost,

		IsActive: true,
	}
	if req.CronExpr != "" {
		schedule.CronExpr = &req.CronExpr
	}
	if schedule.TopicRotation == "" {
		schedule.TopicRotation = models.RotationSequential
	}

	if err := s.schedules.Create(ctx, schedule); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, userID, models.ActivityScheduleChanged, models.JSONB{
		"schedule_id": schedule.ID.String(),
		"action":      "created",
	})
	s.log.Info("Auto schedule created",
		logger.String("schedule_id", schedule.ID.String()),
		logger.String("name", schedule.Name),
		logger.String("time_of_day_utc", schedule.TimeOfDayUTC),
	)

	return schedule, nil
}

// Get retrieves a schedule owned by the user
func (s *AutoScheduleService) Get(ctx context.Context, userID, id uuid.UUID) (*models.AutoSchedule, error) {
	return s.schedules.GetByID(ctx, userID, id)
}

// List retrieves the user's schedules with pagination
func (s *AutoScheduleService) List(ctx context.Context, userID uuid.UUID, siteID *uuid.UUID, page, pageSize int) (*models.AutoScheduleListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	schedules, total, err := s.schedules.List(ctx, userID, siteID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	return &models.AutoScheduleListResponse{
		Schedules: schedules,
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
	}, nil
}

// Update applies a partial update, reconverting the UTC time of day when the
// local time or timezone changes
func (s *AutoScheduleService) Update(ctx context.Context, userID, id uuid.UUID, req *models.UpdateAutoScheduleRequest) (*models.AutoSchedule, error) {
	schedule, err := s.schedules.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	applyScheduleUpdate(schedule, req)

	if req.LocalTime != nil || req.Timezone != nil {
		schedule.TimeOfDayUTC = engine.ToUTCTimeOfDay(schedule.LocalTime, schedule.Timezone, s.log)
	}
	if err := validateCadence(schedule.Frequency, schedule.CustomDays, derefOr(schedule.CronExpr, "")); err != nil {
		return nil, err
	}

	if err := s.schedules.Update(ctx, schedule); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, userID, models.ActivityScheduleChanged, models.JSONB{
		"schedule_id": schedule.ID.String(),
		"action":      "updated",
	})

	return schedule, nil
}

// Delete soft-deletes a schedule
func (s *AutoScheduleService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.schedules.SoftDelete(ctx, userID, id); err != nil {
		return err
	}
	s.activity.Record(ctx, userID, models.ActivityScheduleChanged, models.JSONB{
		"schedule_id": id.String(),
		"action":      "deleted",
	})
	return nil
}

// SetActive pauses or resumes a schedule
func (s *AutoScheduleService) SetActive(ctx context.Context, userID, id uuid.UUID, active bool) error {
	if err := s.schedules.SetActive(ctx, userID, id, active); err != nil {
		return err
	}

	action := "paused"
	if active {
		action = "resumed"
	}
	s.activity.Record(ctx, userID, models.ActivityScheduleChanged, models.JSONB{
		"schedule_id": id.String(),
		"action":      action,
	})
	return nil
}

// RunNow triggers one immediate run. It shares the orchestration path and
// per-schedule exclusion with the timer-triggered path.
func (s *AutoScheduleService) RunNow(ctx context.Context, userID, id uuid.UUID) (*models.RunResult, error) {
	schedule, err := s.schedules.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	return s.runner.Run(ctx, schedule, time.Now().UTC(), true)
}

func applyScheduleUpdate(schedule *models.AutoSchedule, req *models.UpdateAutoScheduleRequest) {
	if req.Name != nil {
		schedule.Name = *req.Name
	}
	if req.Frequency != nil {
		schedule.Frequency = models.Frequency(*req.Frequency)
	}
	if req.LocalTime != nil {
		schedule.LocalTime = *req.LocalTime
	}
	if req.Timezone != nil {
		schedule.Timezone = *req.Timezone
	}
	if req.CustomDays != nil {
		schedule.CustomDays = models.IntList(*req.CustomDays)
	}
	if req.CronExpr != nil {
		if *req.CronExpr == "" {
			schedule.CronExpr = nil
		} else {
			schedule.CronExpr = req.CronExpr
		}
	}
	if req.Topics != nil {
		schedule.Topics = models.StringList(*req.Topics)
		if schedule.NextTopicIndex >= len(schedule.Topics) {
			schedule.NextTopicIndex = 0
		}
	}
	if req.Keywords != nil {
		schedule.Keywords = *req.Keywords
	}
	if req.Tone != nil {
		schedule.Tone = *req.Tone
	}
	if req.WordCount != nil {
		schedule.WordCount = *req.WordCount
	}
	if req.BrandVoice != nil {
		schedule.BrandVoice = *req.BrandVoice
	}
	if req.TargetAudience != nil {
		schedule.TargetAudience = *req.TargetAudience
	}
	if req.EEATCompliance != nil {
		schedule.EEATCompliance = *req.EEATCompliance
	}
	if req.AIProvider != nil {
		schedule.AIProvider = *req.AIProvider
	}
	if req.IncludeImages != nil {
		schedule.IncludeImages = *req.IncludeImages
	}
	if req.ImageCount != nil {
		schedule.ImageCount = *req.ImageCount
	}
	if req.ImageStyle != nil {
		schedule.ImageStyle = *req.ImageStyle
	}
	if req.TopicRotation != nil {
		schedule.TopicRotation = models.TopicRotation(*req.TopicRotation)
	}
	if req.AutoPublish != nil {
		schedule.AutoPublish = *req.AutoPublish
	}
	if req.PublishDelay != nil {
		schedule.PublishDelayHours = *req.PublishDelay
	}
	if req.MaxDailyCost != nil {
		schedule.MaxDailyCost = *req.MaxDailyCost
	}
	if req.MaxMonthlyPost != nil {
		schedule.MaxMonthlyPost = *req.MaxMonthlyPost
	}
	if req.IsActive != nil {
		schedule.IsActive = *req.IsActive
	}
}

func validateCadence(frequency models.Frequency, customDays []int, cronExpr string) error {
	switch frequency {
	case models.FrequencyCustomDays:
		if len(customDays) == 0 {
			return fmt.Errorf("custom_days frequency requires at least one weekday")
		}
	case models.FrequencyCustomCron:
		if cronExpr == "" {
			return fmt.Errorf("custom_cron frequency requires a cron expression")
		}
		if err := engine.ValidateCronExpr(cronExpr); err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
	}
	return nil
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
