package timeline

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/facilitydesk/backend/internal/access"
	"github.com/facilitydesk/backend/internal/middleware"
	"github.com/facilitydesk/backend/pkg/apperr"
	"github.com/facilitydesk/backend/pkg/response"
)

// Handler serves the merged request history.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// Get handles GET /api/requests/:id/timeline.
func (h *Handler) Get(c *gin.Context) {
	actor := middleware.Actor(c)
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return
	}

	req, err := h.repo.RequestMeta(c.Request.Context(), requestID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !access.Capabilities(actor, req).View {
		response.Error(c, apperr.NotFound("request"))
		return
	}

	ctx := c.Request.Context()
	creation, err := h.repo.CreationEntry(ctx, req)
	if err != nil {
		h.logger.Error("timeline creation entry failed", zap.Error(err))
		response.Internal(c, "failed to assemble timeline")
		return
	}
	statuses, err := h.repo.StatusEntries(ctx, requestID)
	if err != nil {
		h.logger.Error("timeline status entries failed", zap.Error(err))
		response.Internal(c, "failed to assemble timeline")
		return
	}
	assignments, err := h.repo.AssignmentEntries(ctx, requestID)
	if err != nil {
		h.logger.Error("timeline assignment entries failed", zap.Error(err))
		response.Internal(c, "failed to assemble timeline")
		return
	}

	response.OK(c, Assemble([]Entry{creation}, statuses, assignments))
}
