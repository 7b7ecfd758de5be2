package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facilitydesk/backend/internal/models"
)

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, password_hash, first_name, last_name, role, organization_id, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Role,
		&u.OrganizationID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail returns a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// Create inserts a user. organizationID may be nil only for super_admin.
func (r *Repository) Create(ctx context.Context, email, passwordHash, firstName, lastName string, role models.Role, organizationID *uuid.UUID) (*models.User, error) {
	const q = `INSERT INTO users (id, email, password_hash, first_name, last_name, role, organization_id)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, q, email, passwordHash, firstName, lastName, role, organizationID))
}

// ListByOrganization returns an organization's users, optionally filtered by
// role (e.g. maintenance-capable assignee pickers).
func (r *Repository) ListByOrganization(ctx context.Context, orgID uuid.UUID, role *models.Role) ([]models.UserPublic, error) {
	q := `SELECT id, email, first_name, last_name, role, organization_id, created_at
		FROM users WHERE organization_id = $1`
	args := []interface{}{orgID}
	if role != nil {
		q += ` AND role = $2`
		args = append(args, *role)
	}
	q += ` ORDER BY last_name, first_name, email`
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserPublic
	for rows.Next() {
		var u models.UserPublic
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role, &u.OrganizationID, &u.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}
