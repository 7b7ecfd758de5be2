package photos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facilitydesk/backend/internal/models"
	"github.com/facilitydesk/backend/pkg/apperr"
)

// Repository manages the photo metadata index in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const photoColumns = `id, request_id, filename, object_key, content_type, size_bytes, caption, uploaded_by, state, created_at`

func scanPhoto(row pgx.Row) (*models.RequestPhoto, error) {
	var p models.RequestPhoto
	err := row.Scan(&p.ID, &p.RequestID, &p.Filename, &p.ObjectKey, &p.ContentType,
		&p.SizeBytes, &p.Caption, &p.UploadedBy, &p.State, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePending inserts the metadata row before the object is uploaded.
func (r *Repository) CreatePending(ctx context.Context, p *models.RequestPhoto) error {
	p.State = models.PhotoStatePending
	return r.pool.QueryRow(ctx, `
		INSERT INTO request_photos (id, request_id, filename, object_key, content_type, size_bytes, caption, uploaded_by, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending')
		RETURNING created_at`,
		p.ID, p.RequestID, p.Filename, p.ObjectKey, p.ContentType, p.SizeBytes, p.Caption, p.UploadedBy,
	).Scan(&p.CreatedAt)
}

// Confirm flips a pending row to confirmed after the object landed.
func (r *Repository) Confirm(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE request_photos SET state = 'confirmed' WHERE id = $1 AND state = 'pending'`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("pending photo")
	}
	return nil
}

// Delete removes a metadata row, typically after the upload failed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM request_photos WHERE id = $1`, id)
	return err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.RequestPhoto, error) {
	p, err := scanPhoto(r.pool.QueryRow(ctx,
		`SELECT `+photoColumns+` FROM request_photos WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("photo")
	}
	return p, err
}

// ListConfirmed returns the confirmed photos of a request, oldest first.
// Pending rows are invisible to readers.
func (r *Repository) ListConfirmed(ctx context.Context, requestID uuid.UUID) ([]models.RequestPhoto, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+photoColumns+` FROM request_photos
		WHERE request_id = $1 AND state = 'confirmed'
		ORDER BY created_at ASC`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := []models.RequestPhoto{}
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, *p)
	}
	return photos, rows.Err()
}

// ListStalePending returns pending rows older than the cutoff, the reconcile
// sweep's work list.
func (r *Repository) ListStalePending(ctx context.Context, cutoff time.Time) ([]models.RequestPhoto, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+photoColumns+` FROM request_photos
		WHERE state = 'pending' AND created_at < $1
		ORDER BY created_at ASC`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := []models.RequestPhoto{}
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, *p)
	}
	return photos, rows.Err()
}

// RequestMeta loads just enough of a request to run visibility checks.
func (r *Repository) RequestMeta(ctx context.Context, requestID uuid.UUID) (*models.Request, error) {
	var req models.Request
	err := r.pool.QueryRow(ctx,
		`SELECT id, organization_id, requestor_id, status FROM requests WHERE id = $1`, requestID,
	).Scan(&req.ID, &req.OrganizationID, &req.RequestorID, &req.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("request")
	}
	return &req, err
}
