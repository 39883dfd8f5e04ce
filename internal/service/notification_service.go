package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/clinic-service/internal/config"
	"github.com/spec-kit/clinic-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventAppointmentCreated, n.handleAppointmentCreated)
	n.dispatcher.Subscribe(events.EventAppointmentStatusChanged, n.handleAppointmentStatusChanged)
	n.dispatcher.Subscribe(events.EventAppointmentNoteSet, n.handleAppointmentNoteSet)
}

func (n *NotificationService) handleAppointmentCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("AppointmentCreated", zap.String("appointment_id", event.AppointmentID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleAppointmentStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("AppointmentStatusChanged", zap.String("appointment_id", event.AppointmentID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleAppointmentNoteSet(ctx context.Context, event events.Event) error {
	n.logger.Info("AppointmentNoteSet", zap.String("appointment_id", event.AppointmentID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("appointment_id", event.AppointmentID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("appointment_id", event.AppointmentID),
		zap.String("event_type", string(event.Type)))
}
