package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/facilitydesk/backend/internal/models"
	"github.com/facilitydesk/backend/pkg/response"
	"github.com/facilitydesk/backend/pkg/utils"
)

var errUnknownOrganization = errors.New("unknown organization slug")

// OrganizationDirectory resolves tenant records during registration.
// Implemented by the organizations repository.
type OrganizationDirectory interface {
	GetBySlug(ctx context.Context, slug string) (*models.Organization, error)
	GetByEmailDomain(ctx context.Context, domain string) (*models.Organization, error)
}

// RegisterRequest is the body for POST /auth/register. The organization is
// resolved by explicit slug, or matched against the email domain when the
// organization has one configured.
type RegisterRequest struct {
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=6"`
	FirstName        string `json:"first_name" binding:"required"`
	LastName         string `json:"last_name"`
	Role             string `json:"role"` // optional, defaults to requester
	OrganizationSlug string `json:"organization_slug"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   *Repository
	orgs   OrganizationDirectory
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, orgs OrganizationDirectory, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, orgs: orgs, jwt: jwt, logger: logger}
}

// Register handles POST /auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	role := models.RoleRequester
	if req.Role != "" {
		role = models.Role(req.Role)
		// super_admin accounts are provisioned out of band, never self-registered.
		if !role.Valid() || role == models.RoleSuperAdmin {
			response.BadRequest(c, "invalid role")
			return
		}
	}

	if _, err := h.repo.GetByEmail(c.Request.Context(), req.Email); err == nil {
		response.BadRequest(c, "email already registered")
		return
	}

	org, err := h.resolveOrganization(c, req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if org == nil {
		response.BadRequest(c, "no organization matches this email domain; provide organization_slug")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	user, err := h.repo.Create(c.Request.Context(), req.Email, hash, req.FirstName, req.LastName, role, &org.ID)
	if err != nil {
		h.logger.Error("create user failed", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, string(user.Role), user.OrganizationID)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.Created(c, TokenResponse{Token: token, User: user.ToPublic()})
}

func (h *Handler) resolveOrganization(c *gin.Context, req RegisterRequest) (*models.Organization, error) {
	if req.OrganizationSlug != "" {
		org, err := h.orgs.GetBySlug(c.Request.Context(), req.OrganizationSlug)
		if err != nil {
			return nil, errUnknownOrganization
		}
		return org, nil
	}
	at := strings.LastIndex(req.Email, "@")
	if at < 0 {
		return nil, nil
	}
	org, err := h.orgs.GetByEmailDomain(c.Request.Context(), req.Email[at+1:])
	if err != nil {
		return nil, nil
	}
	return org, nil
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, string(user.Role), user.OrganizationID)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.OK(c, TokenResponse{Token: token, User: user.ToPublic()})
}
