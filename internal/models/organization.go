package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Organization represents a tenant. Every building, facility, user (except
// super_admin) and request belongs to exactly one organization.
type Organization struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	EmailDomain string          `json:"email_domain,omitempty"`
	LogoURL     string          `json:"logo_url,omitempty"`
	Settings    json.RawMessage `json:"settings,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
