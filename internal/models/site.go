package models

import (
	"time"

	"github.com/google/uuid"
)

// Site is a WordPress installation owned by one user. Credential encryption
// at rest is handled outside this service; the fields here are opaque.
type Site struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	URL         string    `json:"url" db:"url"`
	WPUsername  string    `json:"-" db:"wp_username"`
	WPAppSecret string    `json:"-" db:"wp_app_secret"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
