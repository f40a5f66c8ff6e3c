package models

import (
	"time"

	"github.com/google/uuid"
)

// ContentStatus represents the lifecycle state of a content item
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusPublished ContentStatus = "published"
)

// Content is a generated article tied to one site
type Content struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	UserID         uuid.UUID     `json:"user_id" db:"user_id"`
	SiteID         uuid.UUID     `json:"site_id" db:"site_id"`
	Title          string        `json:"title" db:"title"`
	Body           string        `json:"body" db:"body"`
	Excerpt        string        `json:"excerpt" db:"excerpt"`
	SEOKeywords    StringList    `json:"seo_keywords" db:"seo_keywords"`
	Status         ContentStatus `json:"status" db:"status"`
	AIProvider     string        `json:"ai_provider" db:"ai_provider"`
	GenerationCost float64       `json:"generation_cost" db:"generation_cost"`

	// Stamped by the publication worker
	WordPressPostID *int64     `json:"wordpress_post_id,omitempty" db:"wordpress_post_id"`
	WordPressURL    *string    `json:"wordpress_url,omitempty" db:"wordpress_url"`
	PublishedAt     *time.Time `json:"published_at,omitempty" db:"published_at"`
	PublishError    *string    `json:"publish_error,omitempty" db:"publish_error"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
