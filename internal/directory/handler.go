package directory

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/facilitydesk/backend/internal/middleware"
	"github.com/facilitydesk/backend/internal/models"
	"github.com/facilitydesk/backend/pkg/response"
)

// Handler handles building and facility HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a directory handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// BuildingRequest is the body for building create/update.
type BuildingRequest struct {
	Name  string   `json:"name" binding:"required"`
	Rooms []string `json:"rooms"`
}

// FacilityRequest is the body for facility create/update.
type FacilityRequest struct {
	Name  string   `json:"name" binding:"required"`
	Items []string `json:"items"`
}

func homeOrg(c *gin.Context) (uuid.UUID, bool) {
	actor := middleware.Actor(c)
	if actor.OrganizationID == nil {
		response.Forbidden(c, "no home organization for this account")
		return uuid.Nil, false
	}
	return *actor.OrganizationID, true
}

// ListBuildings handles GET /api/buildings.
func (h *Handler) ListBuildings(c *gin.Context) {
	orgID, ok := homeOrg(c)
	if !ok {
		return
	}
	list, err := h.repo.ListBuildings(c.Request.Context(), orgID)
	if err != nil {
		response.Internal(c, "failed to list buildings")
		return
	}
	response.OK(c, list)
}

// CreateBuilding handles POST /api/buildings (admin).
func (h *Handler) CreateBuilding(c *gin.Context) {
	orgID, ok := homeOrg(c)
	if !ok {
		return
	}
	var body BuildingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	b := &models.Building{OrganizationID: orgID, Name: body.Name, Rooms: body.Rooms}
	if b.Rooms == nil {
		b.Rooms = []string{}
	}
	if err := h.repo.CreateBuilding(c.Request.Context(), b); err != nil {
		response.Conflict(c, "building name already in use")
		return
	}
	response.Created(c, b)
}

// UpdateBuilding handles PATCH /api/buildings/:id (admin).
func (h *Handler) UpdateBuilding(c *gin.Context) {
	orgID, ok := homeOrg(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid building id")
		return
	}
	var body BuildingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	rooms := body.Rooms
	if rooms == nil {
		rooms = []string{}
	}
	if err := h.repo.UpdateBuilding(c.Request.Context(), orgID, id, body.Name, rooms); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"id": id, "name": body.Name, "rooms": rooms})
}

// ListFacilities handles GET /api/facilities.
func (h *Handler) ListFacilities(c *gin.Context) {
	orgID, ok := homeOrg(c)
	if !ok {
		return
	}
	list, err := h.repo.ListFacilities(c.Request.Context(), orgID)
	if err != nil {
		response.Internal(c, "failed to list facilities")
		return
	}
	response.OK(c, list)
}

// CreateFacility handles POST /api/facilities (admin).
func (h *Handler) CreateFacility(c *gin.Context) {
	orgID, ok := homeOrg(c)
	if !ok {
		return
	}
	var body FacilityRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	f := &models.Facility{OrganizationID: orgID, Name: body.Name, Items: body.Items}
	if f.Items == nil {
		f.Items = []string{}
	}
	if err := h.repo.CreateFacility(c.Request.Context(), f); err != nil {
		response.Conflict(c, "facility name already in use")
		return
	}
	response.Created(c, f)
}

// UpdateFacility handles PATCH /api/facilities/:id (admin).
func (h *Handler) UpdateFacility(c *gin.Context) {
	orgID, ok := homeOrg(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid facility id")
		return
	}
	var body FacilityRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	items := body.Items
	if items == nil {
		items = []string{}
	}
	if err := h.repo.UpdateFacility(c.Request.Context(), orgID, id, body.Name, items); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"id": id, "name": body.Name, "items": items})
}
