package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
)

// SiteRepository handles site database operations
type SiteRepository struct {
	db DB
}

// NewSiteRepository creates a new site repository
func NewSiteRepository(db DB) *SiteRepository {
	return &SiteRepository{db: db}
}

// Create inserts a site
func (r *SiteRepository) Create(ctx context.Context, s *models.Site) error {
	query := `
		INSERT INTO sites (id, user_id, name, url, wp_username, wp_app_secret)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx, query,
		s.ID, s.UserID, s.Name, s.URL, s.WPUsername, s.WPAppSecret,
	).Scan(&s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create site: %w", err)
	}

	return nil
}

// GetByID retrieves a site owned by the given user
func (r *SiteRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Site, error) {
	s := &models.Site{}
	query := `
		SELECT id, user_id, name, url, wp_username, wp_app_secret, created_at, updated_at
		FROM sites
		WHERE id = $1 AND user_id = $2`

	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&s.ID, &s.UserID, &s.Name, &s.URL, &s.WPUsername, &s.WPAppSecret,
		&s.CreatedAt, &s.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get site: %w", err)
	}

	return s, nil
}

// ListByUser retrieves all sites owned by a user
func (r *SiteRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Site, error) {
	query := `
		SELECT id, user_id, name, url, wp_username, wp_app_secret, created_at, updated_at
		FROM sites
		WHERE user_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sites: %w", err)
	}
	defer rows.Close()

	sites := []*models.Site{}
	for rows.Next() {
		s := &models.Site{}
		err := rows.Scan(
			&s.ID, &s.UserID, &s.Name, &s.URL, &s.WPUsername, &s.WPAppSecret,
			&s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, s)
	}

	return sites, nil
}
