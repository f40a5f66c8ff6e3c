package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
)

// FixtureBuilder provides methods to create test fixtures
type FixtureBuilder struct{}

// NewFixtureBuilder creates a new fixture builder
func NewFixtureBuilder() *FixtureBuilder {
	return &FixtureBuilder{}
}

// Site creates a test site
func (fb *FixtureBuilder) Site(userID uuid.UUID, overrides ...func(*models.Site)) *models.Site {
	now := time.Now().UTC()

	site := &models.Site{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        "Test Site",
		URL:         "https://example.com",
		WPUsername:  "admin",
		WPAppSecret: "xxxx yyyy zzzz",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, override := range overrides {
		override(site)
	}
	return site
}

// AutoSchedule creates a test schedule with a daily 09:00 cadence
func (fb *FixtureBuilder) AutoSchedule(userID, siteID uuid.UUID, overrides ...func(*models.AutoSchedule)) *models.AutoSchedule {
	now := time.Now().UTC()

	schedule := &models.AutoSchedule{
		ID:             uuid.New(),
		UserID:         userID,
		SiteID:         siteID,
		Name:           "Test Schedule",
		Frequency:      models.FrequencyDaily,
		TimeOfDayUTC:   "09:00",
		LocalTime:      "09:00",
		Timezone:       "UTC",
		Topics:         models.StringList{"Topic A", "Topic B", "Topic C"},
		Tone:           "professional",
		WordCount:      800,
		AIProvider:     "openai",
		TopicRotation:  models.RotationSequential,
		MaxDailyCost:   5.0,
		MaxMonthlyPost: 30,
		LastCostReset:  &now,
		LastPostsReset: &now,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	for _, override := range overrides {
		override(schedule)
	}
	return schedule
}

// Content creates stored test content in draft status
func (fb *FixtureBuilder) Content(userID, siteID uuid.UUID, overrides ...func(*models.Content)) *models.Content {
	now := time.Now().UTC()

	content := &models.Content{
		ID:             uuid.New(),
		UserID:         userID,
		SiteID:         siteID,
		Title:          "Test Article",
		Body:           "<p>Generated article body.</p>",
		Excerpt:        "Generated article excerpt.",
		SEOKeywords:    models.StringList{"seo", "testing"},
		Status:         models.ContentStatusDraft,
		AIProvider:     "openai",
		GenerationCost: 0.03,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	for _, override := range overrides {
		override(content)
	}
	return content
}

// ContentSchedule creates a test publication queue entry
func (fb *FixtureBuilder) ContentSchedule(userID, siteID, contentID uuid.UUID, overrides ...func(*models.ContentSchedule)) *models.ContentSchedule {
	now := time.Now().UTC()

	entry := &models.ContentSchedule{
		ID:            uuid.New(),
		UserID:        userID,
		SiteID:        siteID,
		ContentID:     contentID,
		ScheduledDate: now,
		Status:        models.ContentScheduleStatusScheduled,
		Topic:         StringPtr("Test Topic"),
		Title:         StringPtr("Test Article"),
		Metadata:      models.JSONB{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for _, override := range overrides {
		override(entry)
	}
	return entry
}

// ActivityLog creates a test activity entry
func (fb *FixtureBuilder) ActivityLog(userID uuid.UUID, event string, overrides ...func(*models.ActivityLog)) *models.ActivityLog {
	entry := &models.ActivityLog{
		ID:        uuid.New(),
		UserID:    userID,
		Event:     event,
		Metadata:  models.JSONB{},
		CreatedAt: time.Now().UTC(),
	}

	for _, override := range overrides {
		override(entry)
	}
	return entry
}

// StringPtr returns a pointer to a string
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to an int
func IntPtr(i int) *int {
	return &i
}

// TimePtr returns a pointer to a time
func TimePtr(t time.Time) *time.Time {
	return &t
}
