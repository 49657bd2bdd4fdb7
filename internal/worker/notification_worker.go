package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/slackbot-settings/internal/config"
	"github.com/spec-kit/slackbot-settings/internal/events"
	"github.com/spec-kit/slackbot-settings/internal/service"
)

// StartNotificationWorker subscribes the operator notifications to the
// settings change events published on dispatcher.
func StartNotificationWorker(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *service.NotificationService {
	if dispatcher == nil {
		return nil
	}
	notifications := service.NewNotificationService(dispatcher, logger.Named("notifications"), cfg)
	notifications.RegisterHandlers()
	logger.Info("notification worker started", zap.Bool("webhook", cfg.WebhookURL != ""))
	return notifications
}
