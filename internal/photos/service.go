package photos

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/facilitydesk/backend/config"
	"github.com/facilitydesk/backend/internal/access"
	"github.com/facilitydesk/backend/internal/models"
	"github.com/facilitydesk/backend/pkg/storage"
)

// UploadFailure records one rejected or failed file from a batch upload.
type UploadFailure struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// ObjectStore is the slice of the storage client the photo service uses.
// Satisfied by *storage.S3.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, contentLength int64) error
	ObjectExists(ctx context.Context, key string) (bool, error)
	GeneratePresignedDownloadURL(ctx context.Context, key string, expires time.Duration) (string, error)
	PresignExpire() time.Duration
}

// MetadataStore is the slice of the photo repository the service uses.
// Satisfied by *Repository.
type MetadataStore interface {
	CreatePending(ctx context.Context, p *models.RequestPhoto) error
	Confirm(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RequestPhoto, error)
	ListConfirmed(ctx context.Context, requestID uuid.UUID) ([]models.RequestPhoto, error)
	ListStalePending(ctx context.Context, cutoff time.Time) ([]models.RequestPhoto, error)
}

// Service runs the two-phase photo upload: metadata row first, object second,
// confirm last. A failure between phases leaves a pending row for the
// reconcile sweep, never a dangling object reference served to readers.
type Service struct {
	repo   MetadataStore
	store  ObjectStore
	cfg    config.UploadConfig
	logger *zap.Logger
}

func NewService(repo MetadataStore, store ObjectStore, cfg config.UploadConfig, logger *zap.Logger) *Service {
	return &Service{repo: repo, store: store, cfg: cfg, logger: logger}
}

// Attach uploads a batch of files against a request. Each file is handled
// independently: one rejection never aborts the others, and no failure rolls
// back the request itself.
func (s *Service) Attach(ctx context.Context, actor access.Actor, req *models.Request, files []*multipart.FileHeader) ([]models.RequestPhoto, []UploadFailure) {
	attached := []models.RequestPhoto{}
	failures := []UploadFailure{}

	if len(files) > s.cfg.MaxPhotosPerUpload {
		for _, fh := range files[s.cfg.MaxPhotosPerUpload:] {
			failures = append(failures, UploadFailure{
				Filename: fh.Filename,
				Reason:   fmt.Sprintf("at most %d photos per upload", s.cfg.MaxPhotosPerUpload),
			})
		}
		files = files[:s.cfg.MaxPhotosPerUpload]
	}

	for _, fh := range files {
		photo, err := s.attachOne(ctx, actor, req, fh)
		if err != nil {
			failures = append(failures, UploadFailure{Filename: fh.Filename, Reason: err.Error()})
			continue
		}
		attached = append(attached, *photo)
	}
	return attached, failures
}

func (s *Service) attachOne(ctx context.Context, actor access.Actor, req *models.Request, fh *multipart.FileHeader) (*models.RequestPhoto, error) {
	if s.store == nil {
		return nil, fmt.Errorf("photo storage not configured")
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = storage.ContentTypeForFilename(fh.Filename)
	}
	if !storage.ValidatePhotoType(contentType, fh.Filename) {
		return nil, fmt.Errorf("unsupported photo type %q", contentType)
	}
	if fh.Size > s.cfg.MaxPhotoBytes {
		return nil, fmt.Errorf("file exceeds %d byte limit", s.cfg.MaxPhotoBytes)
	}

	photoID := uuid.New()
	photo := &models.RequestPhoto{
		ID:          photoID,
		RequestID:   req.ID,
		Filename:    fh.Filename,
		ObjectKey:   storage.PhotoKey(req.OrganizationID.String(), req.ID.String(), photoID.String(), fh.Filename),
		ContentType: contentType,
		SizeBytes:   fh.Size,
		UploadedBy:  actor.UserID,
	}

	if err := s.repo.CreatePending(ctx, photo); err != nil {
		return nil, fmt.Errorf("failed to record photo")
	}

	file, err := fh.Open()
	if err != nil {
		s.abandon(ctx, photo.ID)
		return nil, fmt.Errorf("failed to read file")
	}
	defer file.Close()

	if err := s.store.Upload(ctx, photo.ObjectKey, contentType, file, fh.Size); err != nil {
		// The upload outcome is not trustworthy here (a timeout can fire
		// after the write landed). Leave the pending row; the reconcile
		// sweep checks the object and settles the row either way.
		s.logger.Warn("photo upload failed",
			zap.String("photo_id", photo.ID.String()),
			zap.String("request_id", req.ID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("storage unavailable")
	}

	if err := s.repo.Confirm(ctx, photo.ID); err != nil {
		// The object is in S3 but the row is still pending; the reconcile
		// sweep will confirm it.
		s.logger.Warn("photo confirm failed", zap.String("photo_id", photo.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to confirm photo")
	}
	photo.State = models.PhotoStateConfirmed
	return photo, nil
}

func (s *Service) abandon(ctx context.Context, id uuid.UUID) {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("failed to delete abandoned photo row", zap.String("photo_id", id.String()), zap.Error(err))
	}
}

// ListByRequest returns the confirmed photos of a request.
func (s *Service) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]models.RequestPhoto, error) {
	return s.repo.ListConfirmed(ctx, requestID)
}

// DownloadURL builds a presigned GET URL for a confirmed photo.
func (s *Service) DownloadURL(ctx context.Context, photo *models.RequestPhoto) (string, error) {
	if s.store == nil {
		return "", fmt.Errorf("photo storage not configured")
	}
	return s.store.GeneratePresignedDownloadURL(ctx, photo.ObjectKey, s.store.PresignExpire())
}

// PresignTTL reports how long download URLs stay valid.
func (s *Service) PresignTTL() time.Duration {
	if s.store == nil {
		return 0
	}
	return s.store.PresignExpire()
}

// Reconcile resolves one stale pending row: confirm it when the object made
// it to storage, drop it when it did not.
func (s *Service) Reconcile(ctx context.Context, photoID uuid.UUID) error {
	photo, err := s.repo.GetByID(ctx, photoID)
	if err != nil {
		return err
	}
	if photo.State != models.PhotoStatePending {
		return nil
	}
	if s.store == nil {
		return fmt.Errorf("photo storage not configured")
	}
	exists, err := s.store.ObjectExists(ctx, photo.ObjectKey)
	if err != nil {
		return err
	}
	if exists {
		return s.repo.Confirm(ctx, photo.ID)
	}
	s.logger.Info("dropping orphaned photo row", zap.String("photo_id", photo.ID.String()))
	return s.repo.Delete(ctx, photo.ID)
}

// SweepStalePending finds pending rows older than the confirm window and
// reconciles each one. Called periodically by the worker.
func (s *Service) SweepStalePending(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-time.Duration(s.cfg.ConfirmWindowMinutes) * time.Minute)
	stale, err := s.repo.ListStalePending(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	resolved := 0
	for _, p := range stale {
		if err := s.Reconcile(ctx, p.ID); err != nil {
			s.logger.Warn("photo reconcile failed", zap.String("photo_id", p.ID.String()), zap.Error(err))
			continue
		}
		resolved++
	}
	return resolved, nil
}
