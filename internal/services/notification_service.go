package services

import (
	"context"
	"fmt"

	"github.com/vrisetechno/vrise-api/config"
	"github.com/vrisetechno/vrise-api/internal/models"
	"github.com/vrisetechno/vrise-api/pkg/logger"
	"github.com/vrisetechno/vrise-api/pkg/mailer"
	"github.com/vrisetechno/vrise-api/pkg/metrics"
	"github.com/vrisetechno/vrise-api/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// AdminCopyPrefix marks the internal copy of every acknowledgement
const AdminCopyPrefix = "[Admin Copy] "

// NotificationService sends the submitter acknowledgement and the internal copy
type NotificationService struct {
	sender        mailer.Sender
	enabled       bool
	notifyAddress string
}

// NewNotificationService creates a notifier. sender may be nil when email is disabled.
func NewNotificationService(cfg config.EmailConfig, sender mailer.Sender) *NotificationService {
	return &NotificationService{
		sender:        sender,
		enabled:       cfg.Enabled && sender != nil,
		notifyAddress: cfg.NotifyAddress,
	}
}

// Notify attempts both deliveries and reports true only when both succeed.
// Failures are logged and counted here and never returned.
func (s *NotificationService) Notify(ctx context.Context, notification *models.Notification) bool {
	if !s.enabled {
		return false
	}

	ctx, span := tracing.StartSpan(ctx, "notifier.Notify")
	defer span.End()

	attachments := make([]mailer.Attachment, 0, len(notification.Attachments))
	for _, a := range notification.Attachments {
		attachments = append(attachments, mailer.Attachment{
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Data:        a.Data,
		})
	}

	submitterErr := s.deliver(ctx, "submitter", &mailer.Message{
		To:      notification.To,
		Subject: notification.Subject,
		HTML:    notification.HTML,
	})

	adminErr := s.deliver(ctx, "admin", &mailer.Message{
		To:          s.notifyAddress,
		Subject:     AdminCopyPrefix + notification.Subject,
		HTML:        notification.HTML,
		Attachments: attachments,
	})

	sent := submitterErr == nil && adminErr == nil
	span.SetAttributes(attribute.Bool("notification.sent", sent))
	return sent
}

func (s *NotificationService) deliver(ctx context.Context, recipient string, msg *mailer.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during delivery: %v", r)
			logger.Error("Recovered panic while sending email",
				zap.String("recipient", recipient),
				zap.Any("panic", r))
		}
		if err != nil {
			metrics.Notifications.WithLabelValues(recipient, "error").Inc()
			logger.Warn("Failed to send acknowledgement email",
				zap.String("recipient", recipient),
				zap.Error(err))
			return
		}
		metrics.Notifications.WithLabelValues(recipient, "success").Inc()
	}()

	return s.sender.Send(ctx, msg)
}
