package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/facilitydesk/backend/internal/notify"
	"github.com/facilitydesk/backend/internal/photos"
	"github.com/facilitydesk/backend/pkg/queue"
)

// SweepInterval is how often the photo reconcile sweep runs.
const SweepInterval = 10 * time.Minute

// Processor consumes queued jobs: notification emails and photo reconciles.
type Processor struct {
	sender *notify.Sender
	photos *photos.Service
	queue  *queue.Queue
	logger *zap.Logger
}

// NewProcessor creates a job processor.
func NewProcessor(sender *notify.Sender, photoSvc *photos.Service, q *queue.Queue, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{sender: sender, photos: photoSvc, queue: q, logger: logger}
}

// Process executes one job.
func (p *Processor) Process(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeEmail:
		var payload queue.EmailPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
		if err := p.sender.Send(payload); err != nil {
			return fmt.Errorf("send email: %w", err)
		}
		p.logger.Info("email sent",
			zap.String("request_id", payload.RequestID.String()),
			zap.String("recipient", payload.RecipientEmail))
		return nil

	case queue.JobTypePhotoReconcile:
		var payload queue.PhotoReconcilePayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
		if payload.PhotoID == uuid.Nil {
			resolved, err := p.photos.SweepStalePending(ctx)
			if err != nil {
				return fmt.Errorf("photo sweep: %w", err)
			}
			p.logger.Info("photo sweep resolved stale rows", zap.Int("count", resolved))
			return nil
		}
		if err := p.photos.Reconcile(ctx, payload.PhotoID); err != nil {
			return fmt.Errorf("reconcile photo %s: %w", payload.PhotoID, err)
		}
		return nil

	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *Processor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}

// RunSweep periodically reconciles photo rows stuck in the pending state.
func (p *Processor) RunSweep(ctx context.Context) {
	ticker := time.NewTicker(SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("photo sweep stopping")
			return
		case <-ticker.C:
			resolved, err := p.photos.SweepStalePending(ctx)
			if err != nil {
				p.logger.Warn("photo sweep failed", zap.Error(err))
				continue
			}
			if resolved > 0 {
				p.logger.Info("photo sweep resolved stale rows", zap.Int("count", resolved))
			}
		}
	}
}
