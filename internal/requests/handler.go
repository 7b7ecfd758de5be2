package requests

import (
	"encoding/json"
	"fmt"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/facilitydesk/backend/internal/access"
	"github.com/facilitydesk/backend/internal/auth"
	"github.com/facilitydesk/backend/internal/directory"
	"github.com/facilitydesk/backend/internal/lifecycle"
	"github.com/facilitydesk/backend/internal/middleware"
	"github.com/facilitydesk/backend/internal/models"
	"github.com/facilitydesk/backend/internal/notify"
	"github.com/facilitydesk/backend/internal/photos"
	"github.com/facilitydesk/backend/internal/realtime"
	"github.com/facilitydesk/backend/pkg/apperr"
	"github.com/facilitydesk/backend/pkg/response"
)

// Handler handles request lifecycle HTTP endpoints.
type Handler struct {
	repo     *Repository
	dir      *directory.Repository
	users    *auth.Repository
	photos   *photos.Service
	notifier *notify.Notifier
	hub      *realtime.Hub
	logger   *zap.Logger
}

// NewHandler creates a requests handler.
func NewHandler(repo *Repository, dir *directory.Repository, users *auth.Repository, photoSvc *photos.Service, notifier *notify.Notifier, hub *realtime.Hub, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, dir: dir, users: users, photos: photoSvc, notifier: notifier, hub: hub, logger: logger}
}

// CreateResponse is returned from request creation. PhotoFailures lists
// per-file rejections that did not abort the rest of the upload.
type CreateResponse struct {
	Request       *models.Request         `json:"request"`
	Items         *models.RequestItems    `json:"items,omitempty"`
	Building      *models.BuildingRequest `json:"building,omitempty"`
	Photos        []models.RequestPhoto   `json:"photos"`
	PhotoFailures []photos.UploadFailure  `json:"photo_failures,omitempty"`
}

// CreateBuilding handles POST /api/building-requests (multipart).
func (h *Handler) CreateBuilding(c *gin.Context) {
	h.create(c, models.RequestTypeBuilding)
}

// CreateFacilities handles POST /api/facilities-requests (multipart).
func (h *Handler) CreateFacilities(c *gin.Context) {
	h.create(c, models.RequestTypeFacilities)
}

func (h *Handler) create(c *gin.Context, requestType models.RequestType) {
	actor := middleware.Actor(c)
	if actor.OrganizationID == nil {
		response.Forbidden(c, "no home organization for this account")
		return
	}
	orgID := *actor.OrganizationID

	payload, files, err := parseMultipart(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	verr, eventDate, priority := payload.Validate(requestType)
	req := &models.Request{
		OrganizationID: orgID,
		RequestType:    requestType,
		Event:          payload.Event,
		EventDate:      eventDate,
		SetupTime:      payload.SetupTime,
		StartTime:      payload.StartTime,
		EndTime:        payload.EndTime,
		RequestorID:    actor.UserID,
		Priority:       priority,
	}

	var items *models.RequestItems
	var building *models.BuildingRequest
	switch requestType {
	case models.RequestTypeBuilding:
		// Directory check: the building must exist in this tenant and the
		// room must be one of its rooms.
		if payload.Building != "" {
			b, derr := h.dir.GetBuildingByName(c.Request.Context(), orgID, payload.Building)
			if derr != nil {
				verr.Add("building", "unknown building")
			} else if payload.RoomNumber != "" && !b.HasRoom(payload.RoomNumber) {
				verr.Add("room_number", fmt.Sprintf("room %q does not exist in building %q", payload.RoomNumber, payload.Building))
			}
		}
		building = &models.BuildingRequest{
			Building:    payload.Building,
			RoomNumber:  payload.RoomNumber,
			Description: payload.Description,
		}
	case models.RequestTypeFacilities:
		if payload.Facility != "" {
			if _, derr := h.dir.GetFacilityByName(c.Request.Context(), orgID, payload.Facility); derr != nil {
				verr.Add("facility", "unknown facility")
			}
		}
		req.Facility = payload.Facility
		items = itemsFromPayload(payload.Items)
	}

	if verr.HasErrors() {
		response.Error(c, verr)
		return
	}

	if err := h.repo.Create(c.Request.Context(), req, items, building); err != nil {
		h.logger.Error("create request failed", zap.Error(err))
		response.Internal(c, "failed to create request")
		return
	}

	// Photos are best-effort: a failed file never rolls back the committed
	// request, and one bad file does not abort the others.
	attached, failures := h.photos.Attach(c.Request.Context(), actor, req, files)

	h.hub.BroadcastToOrg(orgID, realtime.EventRequestCreated, req)
	h.notifier.RequestCreated(c.Request.Context(), req)

	response.Created(c, CreateResponse{
		Request:       req,
		Items:         items,
		Building:      building,
		Photos:        attached,
		PhotoFailures: failures,
	})
}

func parseMultipart(c *gin.Context) (*CreatePayload, []*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, fmt.Errorf("multipart form required")
	}
	raw := form.Value["payload"]
	if len(raw) == 0 {
		return nil, nil, fmt.Errorf("missing payload form field")
	}
	var payload CreatePayload
	if err := json.Unmarshal([]byte(raw[0]), &payload); err != nil {
		return nil, nil, fmt.Errorf("invalid payload JSON: %v", err)
	}
	return &payload, form.File["photos"], nil
}

func itemsFromPayload(p ItemsPayload) *models.RequestItems {
	return &models.RequestItems{
		Chairs:          p.Chairs,
		ChairsQty:       p.ChairsQty,
		ChairsLocation:  p.ChairsLocation,
		Podium:          p.Podium,
		PodiumLocation:  p.PodiumLocation,
		AVEquipment:     p.AVEquipment,
		AVDetails:       p.AVDetails,
		Tables:          p.Tables,
		TablesQty:       p.TablesQty,
		TablesLocation:  p.TablesLocation,
		Lighting:        p.Lighting,
		LightingDetails: p.LightingDetails,
		Food:            p.Food,
		FoodDetails:     p.FoodDetails,
		Cleanup:         p.Cleanup,
		OtherNeeds:      p.OtherNeeds,
	}
}

// ListMy handles GET /api/requests/my: the actor's own requests.
func (h *Handler) ListMy(c *gin.Context) {
	actor := middleware.Actor(c)
	if actor.OrganizationID == nil {
		response.OK(c, []models.Request{})
		return
	}
	uid := actor.UserID
	scope := access.Scope{OrganizationID: actor.OrganizationID, RequestorID: &uid}
	list, err := h.repo.List(c.Request.Context(), scope)
	if err != nil {
		response.Internal(c, "failed to list requests")
		return
	}
	response.OK(c, list)
}

// ListAssigned handles GET /api/requests/assigned (maintenance+): tenant
// requests whose current assignee is the actor.
func (h *Handler) ListAssigned(c *gin.Context) {
	actor := middleware.Actor(c)
	scope, err := access.ListScope(actor, nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	list, err := h.repo.ListAssignedTo(c.Request.Context(), scope, actor.UserID)
	if err != nil {
		response.Internal(c, "failed to list requests")
		return
	}
	response.OK(c, list)
}

// ListAll handles GET /api/requests/all (admin tier). super_admin must pass
// ?organization_id=...; without it the result is empty, never all tenants.
func (h *Handler) ListAll(c *gin.Context) {
	actor := middleware.Actor(c)
	var selected *uuid.UUID
	if q := c.Query("organization_id"); q != "" {
		id, err := uuid.Parse(q)
		if err != nil {
			response.BadRequest(c, "invalid organization_id")
			return
		}
		selected = &id
	}
	scope, err := access.ListScope(actor, selected)
	if err != nil {
		response.Error(c, err)
		return
	}
	list, err := h.repo.List(c.Request.Context(), scope)
	if err != nil {
		response.Internal(c, "failed to list requests")
		return
	}
	response.OK(c, list)
}

// AggregateResponse is the full request view: detail row, photos, and the
// current assignee, denormalized so the UI needs no further lookups.
type AggregateResponse struct {
	Request         *models.Request         `json:"request"`
	Items           *models.RequestItems    `json:"items,omitempty"`
	Building        *models.BuildingRequest `json:"building,omitempty"`
	Photos          []models.RequestPhoto   `json:"photos"`
	CurrentAssignee *models.UserPublic      `json:"current_assignee,omitempty"`
}

// GetByID handles GET /api/requests/:id.
func (h *Handler) GetByID(c *gin.Context) {
	actor := middleware.Actor(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return
	}
	req, err := h.repo.GetForActor(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := AggregateResponse{Request: req, Photos: []models.RequestPhoto{}}
	switch req.RequestType {
	case models.RequestTypeFacilities:
		items, err := h.repo.GetItems(c.Request.Context(), id)
		if err != nil && !apperr.IsNotFound(err) {
			h.logger.Error("failed to load request items", zap.String("request_id", id.String()), zap.Error(err))
			response.Internal(c, "failed to load request")
			return
		}
		out.Items = items
	case models.RequestTypeBuilding:
		detail, err := h.repo.GetBuildingDetail(c.Request.Context(), id)
		if err != nil && !apperr.IsNotFound(err) {
			h.logger.Error("failed to load building detail", zap.String("request_id", id.String()), zap.Error(err))
			response.Internal(c, "failed to load request")
			return
		}
		out.Building = detail
	}
	list, err := h.photos.ListByRequest(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to list request photos", zap.String("request_id", id.String()), zap.Error(err))
		response.Internal(c, "failed to load request")
		return
	}
	out.Photos = list
	a, err := h.repo.CurrentAssignee(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to load current assignee", zap.String("request_id", id.String()), zap.Error(err))
		response.Internal(c, "failed to load request")
		return
	}
	if a != nil {
		u, err := h.users.GetByID(c.Request.Context(), a.AssigneeID)
		if err != nil {
			h.logger.Error("failed to load assignee", zap.String("assignee_id", a.AssigneeID.String()), zap.Error(err))
			response.Internal(c, "failed to load request")
			return
		}
		pub := u.ToPublic()
		out.CurrentAssignee = &pub
	}
	response.OK(c, out)
}

// UpdateStatusRequest is the body for PATCH /api/requests/:id/status.
type UpdateStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Note   *string `json:"note"`
}

// UpdateStatus handles PATCH /api/requests/:id/status.
func (h *Handler) UpdateStatus(c *gin.Context) {
	actor := middleware.Actor(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return
	}
	var body UpdateStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "status required")
		return
	}

	req, su, err := h.repo.Transition(c.Request.Context(), actor, id, lifecycle.Status(body.Status), body.Note)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.hub.BroadcastToOrg(req.OrganizationID, realtime.EventRequestStatus, gin.H{
		"request_id": req.ID,
		"status":     req.Status,
		"actor_id":   actor.UserID,
	})
	if requestor, uerr := h.users.GetByID(c.Request.Context(), req.RequestorID); uerr == nil {
		h.notifier.StatusChanged(c.Request.Context(), req, su, requestor.Email)
	}

	response.OK(c, gin.H{"request": req, "status_update": su})
}

// AssignRequest is the body for PATCH /api/requests/:id/assignment.
type AssignRequest struct {
	AssigneeID string  `json:"assignee_id" binding:"required,uuid"`
	Notes      *string `json:"notes"`
}

// Assign handles PATCH /api/requests/:id/assignment.
func (h *Handler) Assign(c *gin.Context) {
	actor := middleware.Actor(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return
	}
	var body AssignRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "assignee_id required")
		return
	}
	assigneeID, err := uuid.Parse(body.AssigneeID)
	if err != nil {
		response.BadRequest(c, "invalid assignee_id")
		return
	}
	assignee, err := h.users.GetByID(c.Request.Context(), assigneeID)
	if err != nil {
		response.Error(c, apperr.NotFound("assignee"))
		return
	}

	a, err := h.repo.Assign(c.Request.Context(), actor, id, assignee, body.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}

	if req, gerr := h.repo.GetForActor(c.Request.Context(), actor, id); gerr == nil {
		h.hub.BroadcastToOrg(req.OrganizationID, realtime.EventRequestAssigned, gin.H{
			"request_id":  req.ID,
			"assignee_id": a.AssigneeID,
			"assigner_id": a.AssignerID,
		})
		h.notifier.Assigned(c.Request.Context(), req, assignee.Email)
	}

	response.Created(c, a)
}

// RoomHistory handles GET /api/room-history?building=...&room=....
func (h *Handler) RoomHistory(c *gin.Context) {
	actor := middleware.Actor(c)
	if actor.OrganizationID == nil {
		response.Forbidden(c, "select an organization first")
		return
	}
	building := c.Query("building")
	if building == "" {
		response.BadRequest(c, "building query parameter required")
		return
	}
	list, err := h.repo.RoomHistory(c.Request.Context(), *actor.OrganizationID, building, c.Query("room"))
	if err != nil {
		response.Internal(c, "failed to load room history")
		return
	}
	response.OK(c, list)
}

// RoomBuildings handles GET /api/room-buildings.
func (h *Handler) RoomBuildings(c *gin.Context) {
	actor := middleware.Actor(c)
	if actor.OrganizationID == nil {
		response.Forbidden(c, "select an organization first")
		return
	}
	list, err := h.repo.RoomBuildings(c.Request.Context(), *actor.OrganizationID)
	if err != nil {
		response.Internal(c, "failed to load building summaries")
		return
	}
	response.OK(c, list)
}
