package timeline

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

// Repository reads the event sources of a request's timeline.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanPublic(role string, u *models.UserPublic) {
	u.Role = models.Role(role)
}

// RequestMeta loads the fields needed for visibility checks plus the
// creation event source.
func (r *Repository) RequestMeta(ctx context.Context, requestID uuid.UUID) (*models.Request, error) {
	var req models.Request
	err := r.pool.QueryRow(ctx,
		`SELECT id, organization_id, requestor_id, status, created_at FROM requests WHERE id = $1`, requestID,
	).Scan(&req.ID, &req.OrganizationID, &req.RequestorID, &req.Status, &req.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("request")
	}
	return &req, err
}

// CreationEntry builds the single creation event with the requestor's
// display data.
func (r *Repository) CreationEntry(ctx context.Context, req *models.Request) (Entry, error) {
	var actor models.UserPublic
	var role string
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, first_name, last_name, role FROM users WHERE id = $1`, req.RequestorID,
	).Scan(&actor.ID, &actor.Email, &actor.FirstName, &actor.LastName, &role)
	ts := req.CreatedAt
	e := NewEntry(EntryCreation, &ts, 0)
	if err == nil {
		scanPublic(role, &actor)
		e.Actor = &actor
	}
	return e, nil
}

// StatusEntries returns the status-update events in insertion order.
func (r *Repository) StatusEntries(ctx context.Context, requestID uuid.UUID) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT su.status, su.note, su.seq, su.created_at,
		       u.id, u.email, u.first_name, u.last_name, u.role
		FROM status_updates su
		JOIN users u ON u.id = su.actor_id
		WHERE su.request_id = $1
		ORDER BY su.seq ASC`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var status string
		var note *string
		var seq int64
		var ts *time.Time
		var actor models.UserPublic
		var role string
		if err := rows.Scan(&status, &note, &seq, &ts,
			&actor.ID, &actor.Email, &actor.FirstName, &actor.LastName, &role); err != nil {
			return nil, err
		}
		scanPublic(role, &actor)
		e := NewEntry(EntryStatus, ts, seq)
		e.Status = status
		e.Note = note
		e.Actor = &actor
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AssignmentEntries returns the assignment events in insertion order, with
// both assigner and assignee display data.
func (r *Repository) AssignmentEntries(ctx context.Context, requestID uuid.UUID) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.notes, a.seq, a.assigned_at,
		       ae.id, ae.email, ae.first_name, ae.last_name, ae.role,
		       ar.id, ar.email, ar.first_name, ar.last_name, ar.role
		FROM assignments a
		JOIN users ae ON ae.id = a.assignee_id
		JOIN users ar ON ar.id = a.assigner_id
		WHERE a.request_id = $1
		ORDER BY a.seq ASC`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var notes *string
		var seq int64
		var ts *time.Time
		var assignee, assigner models.UserPublic
		var assigneeRole, assignerRole string
		if err := rows.Scan(&notes, &seq, &ts,
			&assignee.ID, &assignee.Email, &assignee.FirstName, &assignee.LastName, &assigneeRole,
			&assigner.ID, &assigner.Email, &assigner.FirstName, &assigner.LastName, &assignerRole); err != nil {
			return nil, err
		}
		scanPublic(assigneeRole, &assignee)
		scanPublic(assignerRole, &assigner)
		e := NewEntry(EntryAssignment, ts, seq)
		e.Note = notes
		e.Assignee = &assignee
		e.Actor = &assigner
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
