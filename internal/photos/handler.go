package photos

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/facilitydesk/backend/internal/access"
	"github.com/facilitydesk/backend/internal/middleware"
	"github.com/facilitydesk/backend/internal/models"
	"github.com/facilitydesk/backend/pkg/apperr"
	"github.com/facilitydesk/backend/pkg/response"
)

// Handler serves the photo endpoints.
type Handler struct {
	service *Service
	repo    *Repository
	logger  *zap.Logger
}

func NewHandler(service *Service, repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{service: service, repo: repo, logger: logger}
}

func (h *Handler) visibleRequest(c *gin.Context, requestID uuid.UUID) (access.Actor, *models.Request, bool) {
	actor := middleware.Actor(c)
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

// Upload handles POST /api/requests/:id/photos: attach photos to an
// existing request.
func (h *Handler) Upload(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return
	}
	actor, req, ok := h.visibleRequest(c, requestID)
	if !ok {
		return
	}
	if !access.Capabilities(actor, req).Upload {
		response.Forbidden(c, "not allowed to upload photos on this request")
		return
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["photos"]) == 0 {
		response.BadRequest(c, "at least one photo file required")
		return
	}

	attached, failures := h.service.Attach(c.Request.Context(), actor, req, form.File["photos"])
	response.Created(c, gin.H{"photos": attached, "photo_failures": failures})
}

// List handles GET /api/requests/:id/photos.
func (h *Handler) List(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return
	}
	if _, _, ok := h.visibleRequest(c, requestID); !ok {
		return
	}
	list, err := h.service.ListByRequest(c.Request.Context(), requestID)
	if err != nil {
		h.logger.Error("list photos failed", zap.Error(err))
		response.Internal(c, "failed to list photos")
		return
	}
	response.OK(c, list)
}

// DownloadURL handles GET /api/photos/:id/url: a short-lived presigned GET
// link for one confirmed photo.
func (h *Handler) DownloadURL(c *gin.Context) {
	photoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid photo id")
		return
	}
	photo, err := h.repo.GetByID(c.Request.Context(), photoID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if photo.State != models.PhotoStateConfirmed {
		response.Error(c, apperr.NotFound("photo"))
		return
	}
	if _, _, ok := h.visibleRequest(c, photo.RequestID); !ok {
		return
	}

	url, err := h.service.DownloadURL(c.Request.Context(), photo)
	if err != nil {
		response.Error(c, apperr.Storage("failed to sign download url", err))
		return
	}
	response.OK(c, gin.H{"url": url, "expires_in_seconds": int(h.service.PresignTTL().Seconds())})
}
