package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/slackbot-settings/internal/config"
	"github.com/spec-kit/slackbot-settings/internal/events"
)

// NotificationService reports settings changes to operators.
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
	n.dispatcher.Subscribe(events.EventRosterReplaced, n.handleRosterReplaced)
	n.dispatcher.Subscribe(events.EventExportsImported, n.handleExportsImported)
	n.dispatcher.Subscribe(events.EventMessagesDeleted, n.handleMessagesDeleted)
}

func (n *NotificationService) handleRosterReplaced(ctx context.Context, event events.Event) error {
	n.logger.Info("RosterReplaced", zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleExportsImported(ctx context.Context, event events.Event) error {
	n.logger.Info("ExportsImported", zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleMessagesDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("MessagesDeleted", zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))
}
