package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/hr-service/internal/config"
	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/events"
)

// NotificationService turns entity events into outbound notifications.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		logger: logger.With(zap.String("component", "notifications")),
		cfg:    cfg,
	}
}

// Events lists the event types Notify handles.
func (n *NotificationService) Events() []events.EventType {
	return []events.EventType{
		events.EventEntityCreated,
		events.EventEntityUpdated,
		events.EventEntityDeleted,
		events.EventAuditWriteFailed,
		events.EventCascadeFailed,
	}
}

// Notify delivers the notifications of one event.
func (n *NotificationService) Notify(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventEntityCreated:
		n.logger.Info("EntityCreated", zap.String("entity", event.Entity.String()), zap.String("actor", event.ActorID))
		switch event.Entity.Kind {
		case domain.KindUser, domain.KindPayroll:
			// welcome mail and payslip mail
			n.sendEmailNotificationStub(ctx, event)
		}
	case events.EventEntityUpdated:
		n.logger.Info("EntityUpdated", zap.String("entity", event.Entity.String()), zap.Any("payload", event.Payload))
	case events.EventEntityDeleted:
		n.logger.Info("EntityDeleted", zap.String("entity", event.Entity.String()), zap.String("actor", event.ActorID))
	case events.EventAuditWriteFailed, events.EventCascadeFailed:
		n.logger.Warn(string(event.Type), zap.String("entity", event.Entity.String()), zap.Any("payload", event.Payload))
	default:
		return nil
	}
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("entity", event.Entity.String()),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("entity", event.Entity.String()),
		zap.String("event_type", string(event.Type)))
}
