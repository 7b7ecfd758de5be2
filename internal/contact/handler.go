package contact

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/facilitydesk/backend/internal/models"
	"github.com/facilitydesk/backend/pkg/apperr"
	"github.com/facilitydesk/backend/pkg/response"
)

// Handler serves the public contact form and its admin listing.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// SubmitRequest is the body for POST /api/contact.
type SubmitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Submit handles the public POST /api/contact.
func (h *Handler) Submit(c *gin.Context) {
	var body SubmitRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid JSON body")
		return
	}

	verr := &apperr.ValidationError{}
	if strings.TrimSpace(body.Name) == "" {
		verr.Add("name", "name is required")
	}
	if strings.TrimSpace(body.Email) == "" || !strings.Contains(body.Email, "@") {
		verr.Add("email", "a valid email is required")
	}
	if strings.TrimSpace(body.Message) == "" {
		verr.Add("message", "message is required")
	}
	if verr.HasErrors() {
		response.Error(c, verr)
		return
	}

	m := &models.ContactMessage{
		Name:    strings.TrimSpace(body.Name),
		Email:   strings.TrimSpace(body.Email),
		Subject: strings.TrimSpace(body.Subject),
		Message: strings.TrimSpace(body.Message),
	}
	if err := h.repo.Create(c.Request.Context(), m); err != nil {
		h.logger.Error("store contact message failed", zap.Error(err))
		response.Internal(c, "failed to store message")
		return
	}
	response.Created(c, m)
}

// List handles GET /api/contact (admin tier).
func (h *Handler) List(c *gin.Context) {
	limit := 100
	if q := c.Query("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	list, err := h.repo.List(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("list contact messages failed", zap.Error(err))
		response.Internal(c, "failed to list messages")
		return
	}
	response.OK(c, list)
}
