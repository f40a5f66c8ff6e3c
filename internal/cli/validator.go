package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/engine"
	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
)

// ValidationResult collects everything wrong with a schedule definition file
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidateScheduleFile validates a schedule definition JSON file
func ValidateScheduleFile(filename string) (*ValidationResult, error) {
	req, err := LoadScheduleFromFile(filename)
	if err != nil {
		return nil, err
	}
	return ValidateSchedule(req), nil
}

// ValidateSchedule checks a create request for problems the server would
// reject, so mistakes surface before anything is sent over the wire.
func ValidateSchedule(req *models.CreateAutoScheduleRequest) *ValidationResult {
	result := &ValidationResult{Valid: true}

	fail := func(format string, args ...interface{}) {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf(format, args...))
	}

	if req.SiteID == uuid.Nil {
		fail("site_id is required")
	}
	if req.Name == "" {
		fail("name is required")
	}
	if len(req.Name) > 200 {
		fail("name must be at most 200 characters")
	}

	switch models.Frequency(req.Frequency) {
	case models.FrequencyDaily, models.FrequencyWeekly:
	case models.FrequencyCustomDays:
		if len(req.CustomDays) == 0 {
			fail("custom_days frequency requires at least one weekday (0=Sunday .. 6=Saturday)")
		}
		for _, d := range req.CustomDays {
			if d < 0 || d > 6 {
				fail("custom_days entries must be between 0 and 6, got %d", d)
			}
		}
	case models.FrequencyCustomCron:
		if req.CronExpr == "" {
			fail("custom_cron frequency requires cron_expr")
		} else if err := engine.ValidateCronExpr(req.CronExpr); err != nil {
			fail("invalid cron_expr: %v", err)
		}
	default:
		fail("frequency must be one of: daily, weekly, custom_days, custom_cron")
	}

	if _, err := time.Parse("15:04", req.LocalTime); err != nil {
		fail("local_time must be in HH:MM format, got %q", req.LocalTime)
	}
	if req.Timezone == "" {
		fail("timezone is required")
	} else if _, err := time.LoadLocation(req.Timezone); err != nil {
		fail("unknown timezone %q", req.Timezone)
	}

	if len(req.Topics) == 0 {
		fail("at least one topic is required")
	}
	if req.WordCount != 0 && (req.WordCount < 100 || req.WordCount > 10000) {
		fail("word_count must be between 100 and 10000")
	}
	if req.AIProvider != "" && req.AIProvider != "openai" && req.AIProvider != "anthropic" {
		fail("ai_provider must be openai or anthropic")
	}
	if req.TopicRotation != "" && req.TopicRotation != "sequential" && req.TopicRotation != "random" {
		fail("topic_rotation must be sequential or random")
	}
	if req.MaxDailyCost < 0 {
		fail("max_daily_cost must not be negative")
	}
	if req.MaxMonthlyPost < 0 {
		fail("max_monthly_posts must not be negative")
	}
	if req.PublishDelay < 0 || req.PublishDelay > 720 {
		fail("publish_delay_hours must be between 0 and 720")
	}

	return result
}

// LoadScheduleFromFile reads a schedule definition from a JSON file
func LoadScheduleFromFile(filename string) (*models.CreateAutoScheduleRequest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var req models.CreateAutoScheduleRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse schedule definition: %w", err)
	}
	return &req, nil
}

// SaveScheduleToFile writes a schedule definition to a JSON file
func SaveScheduleToFile(req *models.CreateAutoScheduleRequest, filename string) error {
	data, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schedule definition: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
