package models

import (
	"time"

	"github.com/google/uuid"
)

// Frequency represents how often a schedule fires
type Frequency string

const (
	FrequencyDaily      Frequency = "daily"
	FrequencyWeekly     Frequency = "weekly"
	FrequencyCustomDays Frequency = "custom_days"
	FrequencyCustomCron Frequency = "custom_cron"
)

// TopicRotation represents how the next topic is chosen
type TopicRotation string

const (
	RotationSequential TopicRotation = "sequential"
	RotationRandom     TopicRotation = "random"
)

// AutoSchedule is a recurring rule that periodically triggers content generation
type AutoSchedule struct {
	ID     uuid.UUID `json:"id" db:"id"`
	UserID uuid.UUID `json:"user_id" db:"user_id"`
	SiteID uuid.UUID `json:"site_id" db:"site_id"`
	Name   string    `json:"name" db:"name"`

	// Cadence. TimeOfDayUTC is canonical; local time and zone are kept for
	// display and audit only.
	Frequency    Frequency `json:"frequency" db:"frequency"`
	TimeOfDayUTC string    `json:"time_of_day_utc" db:"time_of_day_utc"`
	LocalTime    string    `json:"local_time" db:"local_time"`
	Timezone     string    `json:"timezone" db:"timezone"`
	CustomDays   IntList   `json:"custom_days,omitempty" db:"custom_days"`
	CronExpr     *string   `json:"cron_expr,omitempty" db:"cron_expr"`

	// Content parameters
	Topics         StringList `json:"topics" db:"topics"`
	Keywords       string     `json:"keywords" db:"keywords"`
	Tone           string     `json:"tone" db:"tone"`
	WordCount      int        `json:"word_count" db:"word_count"`
	BrandVoice     string     `json:"brand_voice" db:"brand_voice"`
	TargetAudience string     `json:"target_audience" db:"target_audience"`
	EEATCompliance bool       `json:"eeat_compliance" db:"eeat_compliance"`
	AIProvider     string     `json:"ai_provider" db:"ai_provider"`
	IncludeImages  bool       `json:"include_images" db:"include_images"`
	ImageCount     int        `json:"image_count" db:"image_count"`
	ImageStyle     string     `json:"image_style" db:"image_style"`

	// Rotation state. NextTopicIndex is meaningful only for sequential rotation.
	TopicRotation  TopicRotation `json:"topic_rotation" db:"topic_rotation"`
	NextTopicIndex int           `json:"next_topic_index" db:"next_topic_index"`

	// Publication policy
	AutoPublish       bool `json:"auto_publish" db:"auto_publish"`
	PublishDelayHours int  `json:"publish_delay_hours" db:"publish_delay_hours"`

	// Budget state. Counters reset only via the periodic reset operation.
	MaxDailyCost   float64    `json:"max_daily_cost" db:"max_daily_cost"`
	MaxMonthlyPost int        `json:"max_monthly_posts" db:"max_monthly_posts"`
	CostToday      float64    `json:"cost_today" db:"cost_today"`
	PostsThisMonth int        `json:"posts_this_month" db:"posts_this_month"`
	LastRun        *time.Time `json:"last_run,omitempty" db:"last_run"`
	LastCostReset  *time.Time `json:"last_cost_reset,omitempty" db:"last_cost_reset"`
	LastPostsReset *time.Time `json:"last_posts_reset,omitempty" db:"last_posts_reset"`

	IsActive  bool       `json:"is_active" db:"is_active"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// CreateAutoScheduleRequest represents the request body for creating a schedule
type CreateAutoScheduleRequest struct {
	SiteID         uuid.UUID `json:"site_id" validate:"required"`
	Name           string    `json:"name" validate:"required,max=200"`
	Frequency      string    `json:"frequency" validate:"required,oneof=daily weekly custom_days custom_cron"`
	LocalTime      string    `json:"local_time" validate:"required,timeofday"`
	Timezone       string    `json:"timezone" validate:"required"`
	CustomDays     []int     `json:"custom_days,omitempty" validate:"omitempty,dive,gte=0,lte=6"`
	CronExpr       string    `json:"cron_expr,omitempty"`
	Topics         []string  `json:"topics"`
	Keywords       string    `json:"keywords"`
	Tone           string    `json:"tone"`
	WordCount      int       `json:"word_count" validate:"omitempty,gte=100,lte=10000"`
	BrandVoice     string    `json:"brand_voice"`
	TargetAudience string    `json:"target_audience"`
	EEATCompliance bool      `json:"eeat_compliance"`
	AIProvider     string    `json:"ai_provider" validate:"omitempty,oneof=openai anthropic"`
	IncludeImages  bool      `json:"include_images"`
	ImageCount     int       `json:"image_count" validate:"omitempty,gte=0,lte=10"`
	ImageStyle     string    `json:"image_style"`
	TopicRotation  string    `json:"topic_rotation" validate:"omitempty,oneof=sequential random"`
	AutoPublish    bool      `json:"auto_publish"`
	PublishDelay   int       `json:"publish_delay_hours" validate:"omitempty,gte=0,lte=720"`
	MaxDailyCost   float64   `json:"max_daily_cost" validate:"omitempty,gte=0"`
	MaxMonthlyPost int       `json:"max_monthly_posts" validate:"omitempty,gte=0"`
}

// UpdateAutoScheduleRequest represents the request body for updating a schedule
type UpdateAutoScheduleRequest struct {
	Name           *string   `json:"name,omitempty"`
	Frequency      *string   `json:"frequency,omitempty" validate:"omitempty,oneof=daily weekly custom_days custom_cron"`
	LocalTime      *string   `json:"local_time,omitempty" validate:"omitempty,timeofday"`
	Timezone       *string   `json:"timezone,omitempty"`
	CustomDays     *[]int    `json:"custom_days,omitempty"`
	CronExpr       *string   `json:"cron_expr,omitempty"`
	Topics         *[]string `json:"topics,omitempty"`
	Keywords       *string   `json:"keywords,omitempty"`
	Tone           *string   `json:"tone,omitempty"`
	WordCount      *int      `json:"word_count,omitempty"`
	BrandVoice     *string   `json:"brand_voice,omitempty"`
	TargetAudience *string   `json:"target_audience,omitempty"`
	EEATCompliance *bool     `json:"eeat_compliance,omitempty"`
	AIProvider     *string   `json:"ai_provider,omitempty" validate:"omitempty,oneof=openai anthropic"`
	IncludeImages  *bool     `json:"include_images,omitempty"`
	ImageCount     *int      `json:"image_count,omitempty"`
	ImageStyle     *string   `json:"image_style,omitempty"`
	TopicRotation  *string   `json:"topic_rotation,omitempty" validate:"omitempty,oneof=sequential random"`
	AutoPublish    *bool     `json:"auto_publish,omitempty"`
	PublishDelay   *int      `json:"publish_delay_hours,omitempty"`
	MaxDailyCost   *float64  `json:"max_daily_cost,omitempty"`
	MaxMonthlyPost *int      `json:"max_monthly_posts,omitempty"`
	IsActive       *bool     `json:"is_active,omitempty"`
}

// AutoScheduleListResponse represents the response for listing schedules
type AutoScheduleListResponse struct {
	Schedules []*AutoSchedule `json:"schedules"`
	Total     int64           `json:"total"`
	Page      int             `json:"page"`
	PageSize  int             `json:"page_size"`
}

// RunDisposition describes what happened to a run's output
type RunDisposition string

const (
	DispositionPublished RunDisposition = "published"
	DispositionScheduled RunDisposition = "scheduled"
	DispositionDraft     RunDisposition = "draft"
)

// RunResult is the outcome of one orchestrated run
type RunResult struct {
	ScheduleID  uuid.UUID      `json:"schedule_id"`
	ContentID   uuid.UUID      `json:"content_id"`
	Topic       string         `json:"topic"`
	Title       string         `json:"title"`
	Disposition RunDisposition `json:"disposition"`
	Cost        float64        `json:"cost"`
}
