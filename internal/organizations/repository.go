package organizations

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facilitydesk/backend/internal/models"
)

// Repository handles organization persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an organizations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orgColumns = `id, name, slug, COALESCE(email_domain, ''), COALESCE(logo_url, ''), settings, created_at, updated_at`

func scanOrg(row interface{ Scan(...interface{}) error }) (*models.Organization, error) {
	var org models.Organization
	err := row.Scan(&org.ID, &org.Name, &org.Slug, &org.EmailDomain, &org.LogoURL, &org.Settings, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// Create creates an organization.
func (r *Repository) Create(ctx context.Context, org *models.Organization) error {
	settings := org.Settings
	if settings == nil {
		settings = json.RawMessage(`{}`)
	}
	const q = `INSERT INTO organizations (id, name, slug, email_domain, logo_url, settings)
		VALUES (gen_random_uuid(), $1, $2, NULLIF($3, ''), NULLIF($4, ''), $5)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, org.Name, org.Slug, org.EmailDomain, org.LogoURL, settings).
		Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt)
}

// GetByID returns an organization by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	return scanOrg(r.pool.QueryRow(ctx, `SELECT `+orgColumns+` FROM organizations WHERE id = $1`, id))
}

// GetBySlug returns an organization by slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	return scanOrg(r.pool.QueryRow(ctx, `SELECT `+orgColumns+` FROM organizations WHERE slug = $1`, slug))
}

// GetByEmailDomain returns the organization whose email_domain matches,
// used for registration auto-assignment.
func (r *Repository) GetByEmailDomain(ctx context.Context, domain string) (*models.Organization, error) {
	return scanOrg(r.pool.QueryRow(ctx,
		`SELECT `+orgColumns+` FROM organizations WHERE LOWER(email_domain) = $1`,
		strings.ToLower(domain)))
}

// List returns all organizations (super_admin only path).
func (r *Repository) List(ctx context.Context) ([]*models.Organization, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orgColumns+` FROM organizations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Organization
	for rows.Next() {
		org, err := scanOrg(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, org)
	}
	return list, rows.Err()
}

// UpdateSettings replaces the settings blob.
func (r *Repository) UpdateSettings(ctx context.Context, id uuid.UUID, settings json.RawMessage) error {
	const q = `UPDATE organizations SET settings = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.pool.Exec(ctx, q, settings, id)
	return err
}
