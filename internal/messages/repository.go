package messages

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facilitydesk/backend/internal/models"
	"github.com/facilitydesk/backend/pkg/apperr"
)

// Repository manages the append-only per-request message thread.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create appends a message. Rows are never updated or deleted.
func (r *Repository) Create(ctx context.Context, m *models.Message) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO messages (request_id, sender_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, sent_at`,
		m.RequestID, m.SenderID, m.Content,
	).Scan(&m.ID, &m.SentAt)
}

// ListByRequest returns the thread oldest first, with sender display data.
func (r *Repository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]MessageView, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.request_id, m.sender_id, m.content, m.sent_at,
		       u.email, u.first_name, u.last_name, u.role
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.request_id = $1
		ORDER BY m.sent_at ASC, m.id ASC`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []MessageView{}
	for rows.Next() {
		var v MessageView
		var role string
		if err := rows.Scan(&v.ID, &v.RequestID, &v.SenderID, &v.Content, &v.SentAt,
			&v.SenderEmail, &v.SenderFirstName, &v.SenderLastName, &role); err != nil {
			return nil, err
		}
		v.SenderRole = models.Role(role)
		list = append(list, v)
	}
	return list, rows.Err()
}

// RequestMeta loads just enough of the request for visibility checks.
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
