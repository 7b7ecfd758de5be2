package requests

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facilitydesk/backend/internal/access"
	"github.com/facilitydesk/backend/internal/lifecycle"
	"github.com/facilitydesk/backend/internal/models"
	"github.com/facilitydesk/backend/pkg/apperr"
)

// Repository handles request aggregate persistence. Multi-row invariants
// (request + detail row + status log) are maintained inside transactions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a requests repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const requestColumns = `id, organization_id, request_type, facility, event, event_date,
	setup_time, start_time, end_time, requestor_id, status, priority, created_at, updated_at`

func scanRequest(row pgx.Row) (*models.Request, error) {
	var req models.Request
	err := row.Scan(&req.ID, &req.OrganizationID, &req.RequestType, &req.Facility, &req.Event,
		&req.EventDate, &req.SetupTime, &req.StartTime, &req.EndTime, &req.RequestorID,
		&req.Status, &req.Priority, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Create inserts the request, its exactly-one detail row, and the initial
// pending StatusUpdate in a single transaction. The denormalized status
// column and the log are never allowed to diverge.
func (r *Repository) Create(ctx context.Context, req *models.Request, items *models.RequestItems, building *models.BuildingRequest) error {
	if (items == nil) == (building == nil) {
		return fmt.Errorf("exactly one detail row required")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertRequest = `INSERT INTO requests
		(id, organization_id, request_type, facility, event, event_date, setup_time, start_time, end_time, requestor_id, status, priority)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, 'pending', $10)
		RETURNING id, status, created_at, updated_at`
	err = tx.QueryRow(ctx, insertRequest,
		req.OrganizationID, req.RequestType, req.Facility, req.Event, req.EventDate,
		req.SetupTime, req.StartTime, req.EndTime, req.RequestorID, req.Priority).
		Scan(&req.ID, &req.Status, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}

	switch {
	case items != nil:
		const q = `INSERT INTO request_items
			(id, request_id, chairs, chairs_qty, chairs_location, podium, podium_location,
			 av_equipment, av_details, tables, tables_qty, tables_location,
			 lighting, lighting_details, food, food_details, cleanup, other_needs)
			VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			RETURNING id`
		err = tx.QueryRow(ctx, q, req.ID,
			items.Chairs, items.ChairsQty, items.ChairsLocation,
			items.Podium, items.PodiumLocation,
			items.AVEquipment, items.AVDetails,
			items.Tables, items.TablesQty, items.TablesLocation,
			items.Lighting, items.LightingDetails,
			items.Food, items.FoodDetails,
			items.Cleanup, items.OtherNeeds).Scan(&items.ID)
		if err != nil {
			return fmt.Errorf("insert request items: %w", err)
		}
		items.RequestID = req.ID
	case building != nil:
		const q = `INSERT INTO building_requests (id, request_id, building, room_number, description)
			VALUES (gen_random_uuid(), $1, $2, $3, $4)
			RETURNING id`
		err = tx.QueryRow(ctx, q, req.ID, building.Building, building.RoomNumber, building.Description).
			Scan(&building.ID)
		if err != nil {
			return fmt.Errorf("insert building request: %w", err)
		}
		building.RequestID = req.ID
	}

	const insertStatus = `INSERT INTO status_updates (id, request_id, status, actor_id)
		VALUES (gen_random_uuid(), $1, 'pending', $2)`
	if _, err = tx.Exec(ctx, insertStatus, req.ID, req.RequestorID); err != nil {
		return fmt.Errorf("insert initial status: %w", err)
	}

	return tx.Commit(ctx)
}

// GetForActor returns the request if it is visible to the actor. Requests
// outside the actor's tenant (or, for requesters, not their own) read as
// not found.
func (r *Repository) GetForActor(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.Request, error) {
	req, err := scanRequest(r.pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("request")
		}
		return nil, err
	}
	if !access.Capabilities(actor, req).View {
		return nil, apperr.NotFound("request")
	}
	return req, nil
}

// GetItems returns the facilities detail row for a request.
func (r *Repository) GetItems(ctx context.Context, requestID uuid.UUID) (*models.RequestItems, error) {
	const q = `SELECT id, request_id, chairs, chairs_qty, chairs_location, podium, podium_location,
		av_equipment, av_details, tables, tables_qty, tables_location,
		lighting, lighting_details, food, food_details, cleanup, other_needs
		FROM request_items WHERE request_id = $1`
	var it models.RequestItems
	err := r.pool.QueryRow(ctx, q, requestID).Scan(&it.ID, &it.RequestID,
		&it.Chairs, &it.ChairsQty, &it.ChairsLocation,
		&it.Podium, &it.PodiumLocation,
		&it.AVEquipment, &it.AVDetails,
		&it.Tables, &it.TablesQty, &it.TablesLocation,
		&it.Lighting, &it.LightingDetails,
		&it.Food, &it.FoodDetails,
		&it.Cleanup, &it.OtherNeeds)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("request items")
		}
		return nil, err
	}
	return &it, nil
}

// GetBuildingDetail returns the building detail row for a request.
func (r *Repository) GetBuildingDetail(ctx context.Context, requestID uuid.UUID) (*models.BuildingRequest, error) {
	const q = `SELECT id, request_id, building, room_number, description
		FROM building_requests WHERE request_id = $1`
	var br models.BuildingRequest
	err := r.pool.QueryRow(ctx, q, requestID).
		Scan(&br.ID, &br.RequestID, &br.Building, &br.RoomNumber, &br.Description)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("building request")
		}
		return nil, err
	}
	return &br, nil
}

// List returns requests matching the access scope, newest first. An empty
// scope short-circuits without touching the database.
func (r *Repository) List(ctx context.Context, scope access.Scope) ([]models.Request, error) {
	if scope.Empty {
		return []models.Request{}, nil
	}
	q := `SELECT ` + requestColumns + ` FROM requests WHERE organization_id = $1`
	args := []interface{}{scope.OrganizationID}
	if scope.RequestorID != nil {
		q += ` AND requestor_id = $2`
		args = append(args, *scope.RequestorID)
	}
	q += ` ORDER BY created_at DESC`
	return r.queryRequests(ctx, q, args...)
}

// ListAssignedTo returns the scope's requests whose latest assignment points
// at the given user.
func (r *Repository) ListAssignedTo(ctx context.Context, scope access.Scope, assigneeID uuid.UUID) ([]models.Request, error) {
	if scope.Empty {
		return []models.Request{}, nil
	}
	const q = `SELECT ` + requestColumns + ` FROM requests r
		WHERE r.organization_id = $1
		AND (SELECT a.assignee_id FROM assignments a
			WHERE a.request_id = r.id
			ORDER BY a.assigned_at DESC, a.id DESC LIMIT 1) = $2
		ORDER BY r.created_at DESC`
	return r.queryRequests(ctx, q, scope.OrganizationID, assigneeID)
}

func (r *Repository) queryRequests(ctx context.Context, q string, args ...interface{}) ([]models.Request, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *req)
	}
	if list == nil {
		list = []models.Request{}
	}
	return list, rows.Err()
}

// Transition applies a status change under a row lock: the StatusUpdate
// append and the denormalized column update commit together or not at all.
func (r *Repository) Transition(ctx context.Context, actor access.Actor, requestID uuid.UUID, target lifecycle.Status, note *string) (*models.Request, *models.StatusUpdate, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	req, err := scanRequest(tx.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id = $1 FOR UPDATE`, requestID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, apperr.NotFound("request")
		}
		return nil, nil, err
	}
	if err := access.CanTransition(actor, req, target); err != nil {
		return nil, nil, err
	}
	if err := lifecycle.Transition(lifecycle.Status(req.Status), target); err != nil {
		return nil, nil, err
	}

	su := &models.StatusUpdate{RequestID: requestID, Status: string(target), ActorID: actor.UserID, Note: note}
	const insertStatus = `INSERT INTO status_updates (id, request_id, status, actor_id, note)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		RETURNING id, seq, created_at`
	if err := tx.QueryRow(ctx, insertStatus, requestID, target, actor.UserID, note).
		Scan(&su.ID, &su.Seq, &su.CreatedAt); err != nil {
		return nil, nil, fmt.Errorf("insert status update: %w", err)
	}

	const updateRequest = `UPDATE requests SET status = $1, updated_at = NOW() WHERE id = $2`
	if _, err := tx.Exec(ctx, updateRequest, target, requestID); err != nil {
		return nil, nil, fmt.Errorf("update request status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}
	req.Status = string(target)
	return req, su, nil
}

// Assign appends an assignment row after policy checks. Prior rows are never
// touched; self-assignment and repeat assignment still append an audit entry.
func (r *Repository) Assign(ctx context.Context, actor access.Actor, requestID uuid.UUID, assignee *models.User, notes *string) (*models.Assignment, error) {
	req, err := r.GetForActor(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}
	if err := access.CanAssign(actor, req, assignee); err != nil {
		return nil, err
	}

	a := &models.Assignment{RequestID: requestID, AssigneeID: assignee.ID, AssignerID: actor.UserID, Notes: notes}
	const q = `INSERT INTO assignments (id, request_id, assignee_id, assigner_id, notes)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		RETURNING id, assigned_at`
	if err := r.pool.QueryRow(ctx, q, requestID, assignee.ID, actor.UserID, notes).
		Scan(&a.ID, &a.AssignedAt); err != nil {
		return nil, fmt.Errorf("insert assignment: %w", err)
	}
	return a, nil
}

// CurrentAssignee returns the assignee of the most recent assignment row, or
// nil if the request was never assigned.
func (r *Repository) CurrentAssignee(ctx context.Context, requestID uuid.UUID) (*models.Assignment, error) {
	const q = `SELECT id, request_id, assignee_id, assigner_id, notes, assigned_at
		FROM assignments WHERE request_id = $1
		ORDER BY seq DESC LIMIT 1`
	var a models.Assignment
	err := r.pool.QueryRow(ctx, q, requestID).
		Scan(&a.ID, &a.RequestID, &a.AssigneeID, &a.AssignerID, &a.Notes, &a.AssignedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// RoomHistoryEntry is one row of the per-room request history projection.
type RoomHistoryEntry struct {
	RequestID   uuid.UUID `json:"request_id"`
	Building    string    `json:"building"`
	RoomNumber  string    `json:"room_number"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
}

// RoomHistory returns past building requests for a building (and optional
// room), organization-scoped.
func (r *Repository) RoomHistory(ctx context.Context, orgID uuid.UUID, building, room string) ([]RoomHistoryEntry, error) {
	q := `SELECT r.id, br.building, br.room_number, br.description, r.status, r.priority, r.created_at
		FROM building_requests br
		INNER JOIN requests r ON r.id = br.request_id
		WHERE r.organization_id = $1 AND br.building = $2`
	args := []interface{}{orgID, building}
	if room != "" {
		q += ` AND br.room_number = $3`
		args = append(args, room)
	}
	q += ` ORDER BY r.created_at DESC`
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []RoomHistoryEntry{}
	for rows.Next() {
		var e RoomHistoryEntry
		if err := rows.Scan(&e.RequestID, &e.Building, &e.RoomNumber, &e.Description, &e.Status, &e.Priority, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// RoomBuildingSummary is one building's request footprint across history.
type RoomBuildingSummary struct {
	Building     string   `json:"building"`
	Rooms        []string `json:"rooms"`
	RequestCount int      `json:"request_count"`
}

// RoomBuildings returns, per building, the rooms that have ever had a
// building request, organization-scoped.
func (r *Repository) RoomBuildings(ctx context.Context, orgID uuid.UUID) ([]RoomBuildingSummary, error) {
	const q = `SELECT br.building, ARRAY_AGG(DISTINCT br.room_number ORDER BY br.room_number), COUNT(*)
		FROM building_requests br
		INNER JOIN requests r ON r.id = br.request_id
		WHERE r.organization_id = $1
		GROUP BY br.building
		ORDER BY br.building`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []RoomBuildingSummary{}
	for rows.Next() {
		var s RoomBuildingSummary
		if err := rows.Scan(&s.Building, &s.Rooms, &s.RequestCount); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
