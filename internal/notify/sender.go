package notify

import (
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/facilitydesk/backend/config"
	"github.com/facilitydesk/backend/pkg/queue"
)

// Sender delivers queued notification emails over SMTP. With no SMTP host
// configured it logs and drops, so local setups run without a mail server.
type Sender struct {
	cfg    config.EmailConfig
	logger *zap.Logger
}

func NewSender(cfg config.EmailConfig, logger *zap.Logger) *Sender {
	return &Sender{cfg: cfg, logger: logger}
}

// Send delivers one email payload. Payloads without a recipient are dropped.
func (s *Sender) Send(payload queue.EmailPayload) error {
	if payload.RecipientEmail == "" {
		s.logger.Debug("skipping email without recipient", zap.String("request_id", payload.RequestID.String()))
		return nil
	}
	if s.cfg.SMTPHost == "" {
		s.logger.Info("smtp not configured, dropping email",
			zap.String("recipient", payload.RecipientEmail),
			zap.String("subject", payload.Subject))
		return nil
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	from := fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.FromAddress)
	msg := "From: " + from + "\r\n" +
		"To: " + payload.RecipientEmail + "\r\n" +
		"Subject: " + payload.Subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		payload.Body

	var auth smtp.Auth
	if s.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	}
	if err := smtp.SendMail(addr, auth, s.cfg.FromAddress, []string{payload.RecipientEmail}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
