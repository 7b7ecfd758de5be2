// Package directory manages tenant-scoped reference data: buildings with
// their room lists and facilities with their reservable items. Request
// creation validates building/room/facility references against this data.
package directory

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facilitydesk/backend/internal/models"
	"github.com/facilitydesk/backend/pkg/apperr"
)

// Repository handles building and facility persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a directory repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateBuilding inserts a building for the organization.
func (r *Repository) CreateBuilding(ctx context.Context, b *models.Building) error {
	const q = `INSERT INTO buildings (id, organization_id, name, rooms)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, b.OrganizationID, b.Name, b.Rooms).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

// GetBuildingByName returns the named building within the organization.
func (r *Repository) GetBuildingByName(ctx context.Context, orgID uuid.UUID, name string) (*models.Building, error) {
	const q = `SELECT id, organization_id, name, rooms, created_at, updated_at
		FROM buildings WHERE organization_id = $1 AND name = $2`
	var b models.Building
	err := r.pool.QueryRow(ctx, q, orgID, name).
		Scan(&b.ID, &b.OrganizationID, &b.Name, &b.Rooms, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("building")
		}
		return nil, err
	}
	return &b, nil
}

// ListBuildings returns the organization's buildings.
func (r *Repository) ListBuildings(ctx context.Context, orgID uuid.UUID) ([]models.Building, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, organization_id, name, rooms, created_at, updated_at
		FROM buildings WHERE organization_id = $1 ORDER BY name`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Building
	for rows.Next() {
		var b models.Building
		if err := rows.Scan(&b.ID, &b.OrganizationID, &b.Name, &b.Rooms, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// UpdateBuilding updates name and rooms of a building within the organization.
func (r *Repository) UpdateBuilding(ctx context.Context, orgID, id uuid.UUID, name string, rooms []string) error {
	const q = `UPDATE buildings SET name = $1, rooms = $2, updated_at = NOW()
		WHERE id = $3 AND organization_id = $4`
	tag, err := r.pool.Exec(ctx, q, name, rooms, id, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("building")
	}
	return nil
}

// CreateFacility inserts a facility for the organization.
func (r *Repository) CreateFacility(ctx context.Context, f *models.Facility) error {
	const q = `INSERT INTO facilities (id, organization_id, name, items)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, f.OrganizationID, f.Name, f.Items).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
}

// GetFacilityByName returns the named facility within the organization.
func (r *Repository) GetFacilityByName(ctx context.Context, orgID uuid.UUID, name string) (*models.Facility, error) {
	const q = `SELECT id, organization_id, name, items, created_at, updated_at
		FROM facilities WHERE organization_id = $1 AND name = $2`
	var f models.Facility
	err := r.pool.QueryRow(ctx, q, orgID, name).
		Scan(&f.ID, &f.OrganizationID, &f.Name, &f.Items, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("facility")
		}
		return nil, err
	}
	return &f, nil
}

// ListFacilities returns the organization's facilities.
func (r *Repository) ListFacilities(ctx context.Context, orgID uuid.UUID) ([]models.Facility, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, organization_id, name, items, created_at, updated_at
		FROM facilities WHERE organization_id = $1 ORDER BY name`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Facility
	for rows.Next() {
		var f models.Facility
		if err := rows.Scan(&f.ID, &f.OrganizationID, &f.Name, &f.Items, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, f)
	}
	return list, rows.Err()
}

// UpdateFacility updates name and items of a facility within the organization.
func (r *Repository) UpdateFacility(ctx context.Context, orgID, id uuid.UUID, name string, items []string) error {
	const q = `UPDATE facilities SET name = $1, items = $2, updated_at = NOW()
		WHERE id = $3 AND organization_id = $4`
	tag, err := r.pool.Exec(ctx, q, name, items, id, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("facility")
	}
	return nil
}
