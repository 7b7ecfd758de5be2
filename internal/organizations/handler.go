package organizations

import (
	"encoding/json"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/facilitydesk/backend/internal/auth"
	"github.com/facilitydesk/backend/internal/middleware"
	"github.com/facilitydesk/backend/internal/models"
	"github.com/facilitydesk/backend/pkg/response"
)

// Slug must be lowercase alphanumeric and hyphens only, 2–64 chars.
var slugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,63}$`)

// Handler handles organization HTTP endpoints.
type Handler struct {
	repo     *Repository
	userRepo *auth.Repository
}

// NewHandler creates an organizations handler.
func NewHandler(repo *Repository, userRepo *auth.Repository) *Handler {
	return &Handler{repo: repo, userRepo: userRepo}
}

// CreateOrganizationRequest is the body for POST /api/organizations.
type CreateOrganizationRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	EmailDomain string `json:"email_domain"`
	LogoURL     string `json:"logo_url"`
}

// Create handles POST /api/organizations (super_admin only).
func (h *Handler) Create(c *gin.Context) {
	var body CreateOrganizationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name and slug required")
		return
	}
	if !slugRegex.MatchString(body.Slug) {
		response.BadRequest(c, "slug must be lowercase alphanumeric/hyphens, 2-64 chars")
		return
	}
	org := &models.Organization{
		Name:        body.Name,
		Slug:        body.Slug,
		EmailDomain: body.EmailDomain,
		LogoURL:     body.LogoURL,
	}
	if err := h.repo.Create(c.Request.Context(), org); err != nil {
		response.Conflict(c, "organization slug already in use")
		return
	}
	response.Created(c, org)
}

// List handles GET /api/organizations (super_admin only).
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list organizations")
		return
	}
	response.OK(c, list)
}

// Current handles GET /api/organizations/current: the actor's home tenant.
func (h *Handler) Current(c *gin.Context) {
	actor := middleware.Actor(c)
	if actor.OrganizationID == nil {
		response.NotFound(c, "no home organization for this account")
		return
	}
	org, err := h.repo.GetByID(c.Request.Context(), *actor.OrganizationID)
	if err != nil {
		response.NotFound(c, "organization not found")
		return
	}
	response.OK(c, org)
}

// UpdateSettings handles PATCH /api/organizations/settings (admin).
// Admins can only touch their own tenant's settings.
func (h *Handler) UpdateSettings(c *gin.Context) {
	actor := middleware.Actor(c)
	if actor.OrganizationID == nil {
		response.Forbidden(c, "no home organization for this account")
		return
	}
	var settings json.RawMessage
	if err := c.ShouldBindJSON(&settings); err != nil {
		response.BadRequest(c, "settings must be a JSON object")
		return
	}
	if err := h.repo.UpdateSettings(c.Request.Context(), *actor.OrganizationID, settings); err != nil {
		response.Internal(c, "failed to update settings")
		return
	}
	response.OK(c, gin.H{"organization_id": actor.OrganizationID, "settings": settings})
}

// ListUsers handles GET /api/users (admin): the tenant's users, optionally
// filtered to maintenance-capable assignees with ?role=maintenance.
func (h *Handler) ListUsers(c *gin.Context) {
	actor := middleware.Actor(c)
	if actor.OrganizationID == nil {
		response.Forbidden(c, "select an organization first")
		return
	}
	var role *models.Role
	if q := c.Query("role"); q != "" {
		r := models.Role(q)
		if !r.Valid() {
			response.BadRequest(c, "invalid role filter")
			return
		}
		role = &r
	}
	list, err := h.userRepo.ListByOrganization(c.Request.Context(), *actor.OrganizationID, role)
	if err != nil {
		response.Internal(c, "failed to list users")
		return
	}
	response.OK(c, list)
}
