package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/logger"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/metrics"
)

// DefaultEstimatedRunCost is the budget reservation made before a generation
// call when no better estimate is configured. The actual token-based cost
// replaces it at commit time.
const DefaultEstimatedRunCost = 0.05

// GenerationRequest carries everything the generation collaborator needs for
// one run.
type GenerationRequest struct {
	UserID            uuid.UUID
	SiteID            uuid.UUID
	Topic             string
	Keywords          string
	Tone              string
	WordCount         int
	BrandVoice        string
	TargetAudience    string
	EEATCompliance    bool
	Provider          string
	IncludeImages     bool
	ImageCount        int
	ImageStyle        string
	AutoPublish       bool
	PublishDelayHours int
}

// GenerationResult is what the generation collaborator returns on success.
// Published is true when the collaborator performed the immediate publish
// itself (auto-publish with no delay).
type GenerationResult struct {
	ContentID uuid.UUID
	Title     string
	Cost      float64
	Published bool
}

// ScheduleRunStore is the slice of the schedule repository the orchestrator
// needs: atomic claim, budget reservation, and commit.
type ScheduleRunStore interface {
	// ClaimRun sets last_run to runAt if it is currently unset or before
	// notBefore. A nil notBefore claims unconditionally (manual runs).
	// Returns false when another worker already claimed the window.
	ClaimRun(ctx context.Context, id uuid.UUID, runAt time.Time, notBefore *time.Time) (bool, error)

	// ReserveBudget adds the estimate to cost_today and increments
	// posts_this_month in one conditional update. Returns false when either
	// cap would be breached.
	ReserveBudget(ctx context.Context, id uuid.UUID, estimatedCost float64) (bool, error)

	// ReleaseBudget undoes a reservation after a failed run.
	ReleaseBudget(ctx context.Context, id uuid.UUID, estimatedCost float64) error

	// CommitRun replaces the reserved estimate with the actual cost and
	// advances the topic cursor.
	CommitRun(ctx context.Context, id uuid.UUID, costDelta float64, nextTopicIndex int) error
}

// QueueStore is the slice of the content-schedule repository the orchestrator
// needs.
type QueueStore interface {
	Create(ctx context.Context, schedule *models.ContentSchedule) error

	// EnsurePublished records a published entry for the content id unless one
	// already exists. Idempotent.
	EnsurePublished(ctx context.Context, schedule *models.ContentSchedule) error
}

// Generator produces content for a topic.
type Generator interface {
	Generate(ctx context.Context, req *GenerationRequest) (*GenerationResult, error)
}

// RunLocker provides per-schedule mutual exclusion across workers.
type RunLocker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
}

// AuditRecorder records fire-and-forget activity events.
type AuditRecorder interface {
	Record(ctx context.Context, userID uuid.UUID, event string, metadata models.JSONB)
}

// Orchestrator drives a single schedule run from topic selection through
// budget reservation, generation, queueing, and counter commit.
type Orchestrator struct {
	schedules     ScheduleRunStore
	queue         QueueStore
	generator     Generator
	locker        RunLocker
	audit         AuditRecorder
	log           *logger.Logger
	lockTTL       time.Duration
	estimatedCost float64
	metrics       *metrics.Metrics
}

func NewOrchestrator(
	schedules ScheduleRunStore,
	queue QueueStore,
	generator Generator,
	locker RunLocker,
	audit AuditRecorder,
	log *logger.Logger,
	lockTTL time.Duration,
) *Orchestrator {
	if lockTTL <= 0 {
		lockTTL = 10 * time.Minute
	}
	return &Orchestrator{
		schedules:     schedules,
		queue:         queue,
		generator:     generator,
		locker:        locker,
		audit:         audit,
		log:           log,
		lockTTL:       lockTTL,
		estimatedCost: DefaultEstimatedRunCost,
	}
}

// SetEstimatedCost overrides the per-run budget reservation estimate.
func (o *Orchestrator) SetEstimatedCost(cost float64) {
	if cost > 0 {
		o.estimatedCost = cost
	}
}

// SetMetrics enables Prometheus instrumentation of runs.
func (o *Orchestrator) SetMetrics(m *metrics.Metrics) {
	o.metrics = m
}

func runLockKey(id uuid.UUID) string {
	return "autoschedule:run:" + id.String()
}

// Run executes one run of the schedule at nowUTC. Manual runs skip the
// due-window claim condition but share the same mutual exclusion. The
// returned RunResult is nil when the run was skipped or denied.
func (o *Orchestrator) Run(ctx context.Context, schedule *models.AutoSchedule, nowUTC time.Time, manual bool) (*models.RunResult, error) {
	if !schedule.IsActive || schedule.DeletedAt != nil {
		return nil, models.ErrScheduleInactive
	}
	nowUTC = nowUTC.UTC()
	log := o.log.With(
		logger.String("schedule_id", schedule.ID.String()),
		logger.String("schedule_name", schedule.Name),
	)

	acquired, err := o.locker.AcquireLock(ctx, runLockKey(schedule.ID), o.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquiring run lock: %w", err)
	}
	if !acquired {
		return nil, models.ErrRunInProgress
	}
	defer func() {
		if err := o.locker.ReleaseLock(context.WithoutCancel(ctx), runLockKey(schedule.ID)); err != nil {
			log.Warn("Failed to release run lock", logger.Err(err))
		}
	}()

	// Claim the run by updating last_run before any work starts. For the
	// timer path the claim is conditional on the current due window, so a
	// racing poller that slipped past the lock still cannot double-fire.
	var notBefore *time.Time
	if !manual {
		target, err := parseTimeOfDay(schedule.TimeOfDayUTC)
		if err == nil && schedule.Frequency != models.FrequencyCustomCron {
			ws := windowStartFor(nowUTC, target)
			notBefore = &ws
		}
	}
	claimed, err := o.schedules.ClaimRun(ctx, schedule.ID, nowUTC, notBefore)
	if err != nil {
		return nil, fmt.Errorf("claiming run: %w", err)
	}
	if !claimed {
		return nil, models.ErrRunInProgress
	}

	o.audit.Record(ctx, schedule.UserID, models.ActivityRunStarted, models.JSONB{
		"schedule_id": schedule.ID.String(),
		"manual":      manual,
	})

	topic, nextIndex := SelectTopic(schedule.Topics, schedule.TopicRotation, schedule.NextTopicIndex)
	log = log.With(logger.String("topic", topic))

	if err := CheckBudget(schedule, o.estimatedCost); err != nil {
		o.recordBudgetDenial(ctx, schedule, err)
		return nil, err
	}
	reserved, err := o.schedules.ReserveBudget(ctx, schedule.ID, o.estimatedCost)
	if err != nil {
		return nil, fmt.Errorf("reserving budget: %w", err)
	}
	if !reserved {
		budgetErr := &models.BudgetError{ScheduleID: schedule.ID.String(), Reason: "daily_cost"}
		o.recordBudgetDenial(ctx, schedule, budgetErr)
		return nil, budgetErr
	}

	result, err := o.generator.Generate(ctx, &GenerationRequest{
		UserID:            schedule.UserID,
		SiteID:            schedule.SiteID,
		Topic:             topic,
		Keywords:          schedule.Keywords,
		Tone:              schedule.Tone,
		WordCount:         schedule.WordCount,
		BrandVoice:        schedule.BrandVoice,
		TargetAudience:    schedule.TargetAudience,
		EEATCompliance:    schedule.EEATCompliance,
		Provider:          schedule.AIProvider,
		IncludeImages:     schedule.IncludeImages,
		ImageCount:        schedule.ImageCount,
		ImageStyle:        schedule.ImageStyle,
		AutoPublish:       schedule.AutoPublish,
		PublishDelayHours: schedule.PublishDelayHours,
	})
	if err != nil {
		o.releaseReservation(ctx, schedule.ID, log)
		o.audit.Record(ctx, schedule.UserID, models.ActivityGenerationFailed, models.JSONB{
			"schedule_id": schedule.ID.String(),
			"topic":       topic,
			"error":       err.Error(),
		})
		log.Error("Content generation failed", logger.Err(err))
		return nil, fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}

	disposition, err := o.enqueue(ctx, schedule, result, topic, nowUTC)
	if err != nil {
		o.releaseReservation(ctx, schedule.ID, log)
		return nil, fmt.Errorf("enqueueing content %s: %w", result.ContentID, err)
	}

	// Replace the reserved estimate with the actual cost and advance the
	// cursor. Applied once, only after the queue entry exists.
	if err := o.schedules.CommitRun(ctx, schedule.ID, result.Cost-o.estimatedCost, nextIndex); err != nil {
		log.Error("Failed to commit run counters", logger.Err(err))
		return nil, fmt.Errorf("committing run: %w", err)
	}

	o.audit.Record(ctx, schedule.UserID, models.ActivityRunCompleted, models.JSONB{
		"schedule_id": schedule.ID.String(),
		"content_id":  result.ContentID.String(),
		"topic":       topic,
		"disposition": string(disposition),
		"cost":        result.Cost,
	})
	if o.metrics != nil {
		o.metrics.ScheduleRunsTotal.WithLabelValues(string(disposition)).Inc()
		o.metrics.ScheduleRunDuration.Observe(time.Since(nowUTC).Seconds())
		o.metrics.GenerationCostUSD.Add(result.Cost)
	}
	log.Info("Schedule run completed",
		logger.String("content_id", result.ContentID.String()),
		logger.String("disposition", string(disposition)),
		logger.Float64("cost", result.Cost),
	)

	return &models.RunResult{
		ScheduleID:  schedule.ID,
		ContentID:   result.ContentID,
		Topic:       topic,
		Title:       result.Title,
		Disposition: disposition,
		Cost:        result.Cost,
	}, nil
}

// enqueue applies the publish policy to the generated content.
func (o *Orchestrator) enqueue(ctx context.Context, schedule *models.AutoSchedule, result *GenerationResult, topic string, nowUTC time.Time) (models.RunDisposition, error) {
	entry := &models.ContentSchedule{
		ID:        uuid.New(),
		UserID:    schedule.UserID,
		SiteID:    schedule.SiteID,
		ContentID: result.ContentID,
		Topic:     &topic,
		Title:     &result.Title,
		Metadata: models.JSONB{
			"auto_schedule_id": schedule.ID.String(),
			"cost":             result.Cost,
			"local_time":       schedule.LocalTime,
			"timezone":         schedule.Timezone,
		},
	}

	switch {
	case schedule.AutoPublish && schedule.PublishDelayHours == 0:
		if !result.Published {
			// The inline publish did not happen; hand the entry to the
			// queue worker for an immediate attempt.
			entry.Status = models.ContentScheduleStatusScheduled
			entry.ScheduledDate = nowUTC
			if err := o.queue.Create(ctx, entry); err != nil {
				return "", err
			}
			return models.DispositionScheduled, nil
		}
		// The generation collaborator handled the publish itself; make sure
		// exactly one published entry exists for the content.
		entry.Status = models.ContentScheduleStatusPublished
		entry.ScheduledDate = nowUTC
		if err := o.queue.EnsurePublished(ctx, entry); err != nil {
			return "", err
		}
		return models.DispositionPublished, nil

	case schedule.AutoPublish:
		entry.Status = models.ContentScheduleStatusScheduled
		entry.ScheduledDate = nowUTC.Add(time.Duration(schedule.PublishDelayHours) * time.Hour)
		if err := o.queue.Create(ctx, entry); err != nil {
			return "", err
		}
		return models.DispositionScheduled, nil

	default:
		entry.Status = models.ContentScheduleStatusDraft
		entry.ScheduledDate = nowUTC
		if err := o.queue.Create(ctx, entry); err != nil {
			return "", err
		}
		return models.DispositionDraft, nil
	}
}

func (o *Orchestrator) recordBudgetDenial(ctx context.Context, schedule *models.AutoSchedule, err error) {
	reason := "unknown"
	var budgetErr *models.BudgetError
	if errors.As(err, &budgetErr) {
		reason = budgetErr.Reason
	}
	o.audit.Record(ctx, schedule.UserID, models.ActivityBudgetDenied, models.JSONB{
		"schedule_id": schedule.ID.String(),
		"reason":      reason,
	})
	if o.metrics != nil {
		o.metrics.BudgetDenialsTotal.WithLabelValues(reason).Inc()
	}
	o.log.Info("Run denied by budget guard",
		logger.String("schedule_id", schedule.ID.String()),
		logger.String("reason", reason),
	)
}

func (o *Orchestrator) releaseReservation(ctx context.Context, id uuid.UUID, log *logger.Logger) {
	if err := o.schedules.ReleaseBudget(context.WithoutCancel(ctx), id, o.estimatedCost); err != nil {
		log.Error("Failed to release budget reservation", logger.Err(err))
	}
}
