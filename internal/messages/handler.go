package messages

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/facilitydesk/backend/internal/access"
	"github.com/facilitydesk/backend/internal/middleware"
	"github.com/facilitydesk/backend/internal/models"
	"github.com/facilitydesk/backend/internal/realtime"
	"github.com/facilitydesk/backend/pkg/apperr"
	"github.com/facilitydesk/backend/pkg/response"
)

// MessageView is a thread entry with denormalized sender display data.
type MessageView struct {
	ID              uuid.UUID   `json:"id"`
	RequestID       uuid.UUID   `json:"request_id"`
	SenderID        uuid.UUID   `json:"sender_id"`
	Content         string      `json:"content"`
	SentAt          time.Time   `json:"sent_at"`
	SenderEmail     string      `json:"sender_email"`
	SenderFirstName string      `json:"sender_first_name"`
	SenderLastName  string      `json:"sender_last_name"`
	SenderRole      models.Role `json:"sender_role"`
}

// Handler serves the per-request message thread.
type Handler struct {
	repo   *Repository
	hub    *realtime.Hub
	logger *zap.Logger
}

func NewHandler(repo *Repository, hub *realtime.Hub, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, hub: hub, logger: logger}
}

func (h *Handler) visibleRequest(c *gin.Context) (access.Actor, *models.Request, bool) {
	actor := middleware.Actor(c)
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return actor, nil, false
	}
	req, err := h.repo.RequestMeta(c.Request.Context(), requestID)
	if err != nil {
		response.Error(c, err)
		return actor, nil, false
	}
	if !access.Capabilities(actor, req).View {
		response.Error(c, apperr.NotFound("request"))
		return actor, nil, false
	}
	return actor, req, true
}

// List handles GET /api/requests/:id/messages.
func (h *Handler) List(c *gin.Context) {
	_, req, ok := h.visibleRequest(c)
	if !ok {
		return
	}
	list, err := h.repo.ListByRequest(c.Request.Context(), req.ID)
	if err != nil {
		h.logger.Error("list messages failed", zap.Error(err))
		response.Internal(c, "failed to list messages")
		return
	}
	response.OK(c, list)
}

// PostRequest is the body for POST /api/requests/:id/messages.
type PostRequest struct {
	Content string `json:"content" binding:"required"`
}

// Post handles POST /api/requests/:id/messages.
func (h *Handler) Post(c *gin.Context) {
	actor, req, ok := h.visibleRequest(c)
	if !ok {
		return
	}
	if !access.Capabilities(actor, req).Message {
		response.Forbidden(c, "not allowed to post on this request")
		return
	}

	var body PostRequest
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Content) == "" {
		response.Error(c, apperr.Validation("content", "content is required"))
		return
	}

	m := &models.Message{
		RequestID: req.ID,
		SenderID:  actor.UserID,
		Content:   strings.TrimSpace(body.Content),
	}
	if err := h.repo.Create(c.Request.Context(), m); err != nil {
		h.logger.Error("post message failed", zap.Error(err))
		response.Internal(c, "failed to post message")
		return
	}

	h.hub.BroadcastToOrg(req.OrganizationID, realtime.EventMessagePosted, m)
	response.Created(c, m)
}
