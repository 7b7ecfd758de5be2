package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/facilitydesk/backend/internal/models"
	"github.com/facilitydesk/backend/pkg/queue"
)

// Notifier composes notification emails and hands them to the job queue.
// Delivery is asynchronous: a full queue or dead broker never fails the
// request that triggered the notification.
type Notifier struct {
	queue  *queue.Queue
	logger *zap.Logger
}

func NewNotifier(q *queue.Queue, logger *zap.Logger) *Notifier {
	return &Notifier{queue: q, logger: logger}
}

func (n *Notifier) enqueue(ctx context.Context, payload queue.EmailPayload) {
	if err := n.queue.EnqueueEmail(ctx, payload); err != nil {
		n.logger.Warn("failed to enqueue notification email",
			zap.String("request_id", payload.RequestID.String()),
			zap.String("recipient", payload.RecipientEmail),
			zap.Error(err))
	}
}

// RequestCreated notifies the maintenance inbox about a new request. The
// recipient is resolved by the worker from the organization's settings, so
// the payload carries only the request.
func (n *Notifier) RequestCreated(ctx context.Context, req *models.Request) {
	n.enqueue(ctx, queue.EmailPayload{
		RequestID: req.ID,
		Subject:   fmt.Sprintf("New %s request: %s", req.RequestType, req.Event),
		Body: fmt.Sprintf("A new %s request %q was submitted for %s.",
			req.RequestType, req.Event, req.EventDate.Format("2006-01-02")),
	})
}

// StatusChanged notifies the requestor that their request moved.
func (n *Notifier) StatusChanged(ctx context.Context, req *models.Request, su *models.StatusUpdate, recipient string) {
	body := fmt.Sprintf("Your request %q is now %s.", req.Event, su.Status)
	if su.Note != nil && *su.Note != "" {
		body += "\n\nNote: " + *su.Note
	}
	n.enqueue(ctx, queue.EmailPayload{
		RequestID:      req.ID,
		RecipientEmail: recipient,
		Subject:        fmt.Sprintf("Request update: %s is %s", req.Event, su.Status),
		Body:           body,
	})
}

// Assigned notifies the new assignee.
func (n *Notifier) Assigned(ctx context.Context, req *models.Request, recipient string) {
	n.enqueue(ctx, queue.EmailPayload{
		RequestID:      req.ID,
		RecipientEmail: recipient,
		Subject:        fmt.Sprintf("Assigned to you: %s", req.Event),
		Body: fmt.Sprintf("You have been assigned the %s request %q scheduled for %s.",
			req.RequestType, req.Event, req.EventDate.Format("2006-01-02")),
	})
}
