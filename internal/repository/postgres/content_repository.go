package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/engine"
	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/logger"
)

const contentColumns = `
	id, user_id, site_id, title, body, excerpt, seo_keywords, status,
	ai_provider, generation_cost, wordpress_post_id, wordpress_url,
	published_at, publish_error, created_at, updated_at`

// ContentRepository handles content database operations. generation_cost is a
// text column inherited from an earlier schema whose writer concatenated
// numeric strings; reads go through the defensive cost parser.
type ContentRepository struct {
	db  DB
	log *logger.Logger
}

// NewContentRepository creates a new content repository
func NewContentRepository(db DB, log *logger.Logger) *ContentRepository {
	return &ContentRepository{db: db, log: log}
}

func (r *ContentRepository) scanContent(row interface{ Scan(...interface{}) error }) (*models.Content, error) {
	c := &models.Content{}
	var rawCost string
	err := row.Scan(
		&c.ID, &c.UserID, &c.SiteID, &c.Title, &c.Body, &c.Excerpt, &c.SEOKeywords, &c.Status,
		&c.AIProvider, &rawCost, &c.WordPressPostID, &c.WordPressURL,
		&c.PublishedAt, &c.PublishError, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.GenerationCost = engine.ParseCost(rawCost, r.log)
	return c, nil
}

// Create inserts a generated content item
func (r *ContentRepository) Create(ctx context.Context, c *models.Content) error {
	query := `
		INSERT INTO contents (
			id, user_id, site_id, title, body, excerpt, seo_keywords, status,
			ai_provider, generation_cost
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx, query,
		c.ID, c.UserID, c.SiteID, c.Title, c.Body, c.Excerpt, c.SEOKeywords, c.Status,
		c.AIProvider, strconv.FormatFloat(c.GenerationCost, 'f', -1, 64),
	).Scan(&c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create content: %w", err)
	}

	return nil
}

// GetByID retrieves a content item owned by the given user
func (r *ContentRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Content, error) {
	query := `
		SELECT ` + contentColumns + `
		FROM contents
		WHERE id = $1 AND user_id = $2`

	c, err := r.scanContent(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content: %w", err)
	}

	return c, nil
}

// MarkPublished stamps the remote post id and URL after a successful publish
func (r *ContentRepository) MarkPublished(ctx context.Context, id uuid.UUID, remotePostID int64, remoteURL string, publishedAt time.Time) error {
	query := `
		UPDATE contents
		SET status = 'published',
		    wordpress_post_id = $2,
		    wordpress_url = $3,
		    published_at = $4,
		    publish_error = NULL,
		    updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, remotePostID, remoteURL, publishedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to mark content published: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrNotFound
	}

	return nil
}

// MarkPublishError records a failed publish attempt on the content item
func (r *ContentRepository) MarkPublishError(ctx context.Context, id uuid.UUID, message string) error {
	query := `
		UPDATE contents
		SET publish_error = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, message)
	if err != nil {
		return fmt.Errorf("failed to record publish error: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrNotFound
	}

	return nil
}
