package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/yashturmbekar/pmcrms/internal/application/port"
	"github.com/yashturmbekar/pmcrms/internal/domain/entity"
	"github.com/yashturmbekar/pmcrms/internal/domain/workflow"
)

// maxSendAttempts bounds retries so a flaky relay cannot pin a worker
const maxSendAttempts = 3

// Config holds SMTP relay settings
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPNotifier implements port.StageNotifier over an SMTP relay. Delivery is
// best-effort with a bounded retry; the caller treats errors as log-only.
type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

// NewSMTPNotifier creates a notifier backed by an SMTP relay
func NewSMTPNotifier(cfg Config, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

// NotifyStage emails the applicant about the application's new stage
func (n *SMTPNotifier) NotifyStage(ctx context.Context, app *entity.Application, newStatus workflow.Status, remarks string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", n.from)
	msg.SetHeader("To", app.ApplicantEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Application %s: %s", app.ApplicationNumber, subjectFor(newStatus)))
	msg.SetBody("text/plain", bodyFor(app, newStatus, remarks))

	var lastErr error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if lastErr = n.dialer.DialAndSend(msg); lastErr == nil {
			n.logger.Info("Stage notification sent",
				zap.Int64("application_id", app.ID),
				zap.String("status", string(newStatus)),
				zap.Int("attempt", attempt))
			return nil
		}

		n.logger.Warn("Stage notification attempt failed",
			zap.Int64("application_id", app.ID),
			zap.Int("attempt", attempt),
			zap.Error(lastErr))

		if attempt < maxSendAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}

	return fmt.Errorf("send stage notification after %d attempts: %w", maxSendAttempts, lastErr)
}

func subjectFor(status workflow.Status) string {
	switch {
	case status == workflow.StatusPaymentPending:
		return "payment required"
	case status == workflow.StatusCertificateIssued:
		return "certificate issued"
	case status == workflow.StatusCompleted:
		return "registration complete"
	case status.IsRejection():
		return "changes requested"
	default:
		return "status update"
	}
}

func bodyFor(app *entity.Application, status workflow.Status, remarks string) string {
	body := fmt.Sprintf("Dear %s,\n\nYour application %s has moved to status %s.",
		app.ApplicantName, app.ApplicationNumber, status)
	if remarks != "" {
		body += fmt.Sprintf("\n\nRemarks: %s", remarks)
	}
	body += "\n\nPMC Registration Management System"
	return body
}

// Verify interface compliance
var _ port.StageNotifier = (*SMTPNotifier)(nil)
