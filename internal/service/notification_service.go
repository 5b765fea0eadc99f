package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fieldops/deployment-service/internal/config"
	"github.com/fieldops/deployment-service/internal/events"
	"github.com/fieldops/deployment-service/internal/mail"
	"github.com/fieldops/deployment-service/internal/observability"
)

// NotificationService emits notifications for domain events. Submission
// notifications go to a fixed recipient list from configuration.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     mail.Mailer
	logger     *zap.Logger
	metrics    *observability.Metrics
	from       string
	recipients []string
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, mailer mail.Mailer, logger *zap.Logger, metrics *observability.Metrics, mailCfg config.MailConfig, notifyCfg config.NotifyConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		mailer:     mailer,
		logger:     logger,
		metrics:    metrics,
		from:       mailCfg.From,
		recipients: notifyCfg.Recipients,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventStagedSubmitted, n.handleStagedSubmitted)
	n.dispatcher.Subscribe(events.EventStagedConfirmed, n.logEvent)
	n.dispatcher.Subscribe(events.EventDeploymentCreated, n.logEvent)
	n.dispatcher.Subscribe(events.EventDeploymentPatched, n.logEvent)
	n.dispatcher.Subscribe(events.EventDeploymentDeleted, n.logEvent)
	n.dispatcher.Subscribe(events.EventChecklistUpdated, n.logEvent)
}

func (n *NotificationService) handleStagedSubmitted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.StagedSubmittedPayload)
	if !ok {
		n.logger.Warn("unexpected payload type", zap.String("event", string(event.Type)))
		return nil
	}
	n.logger.Info("StagedSubmitted",
		zap.String("staged_id", payload.StagedID),
		zap.Int64("customer_id", payload.CustomerID))

	if len(n.recipients) == 0 {
		n.logger.Warn("no notification recipients configured; skipping mail")
		return nil
	}

	msg := &mail.Message{
		From:    n.from,
		To:      n.recipients,
		Subject: "New deployment submitted",
		Body: fmt.Sprintf(
			"A new deployment has been submitted by %s.\n\nConfirm it here: %s\n",
			payload.SubmitterEmail, payload.ConfirmationLink),
	}
	if err := n.mailer.Send(ctx, msg); err != nil {
		n.logger.Error("sending submission notification failed", zap.Error(err))
		return err
	}
	n.metrics.RecordMailSent()
	return nil
}

func (n *NotificationService) logEvent(_ context.Context, event events.Event) error {
	n.logger.Info(string(event.Type), zap.Any("payload", event.Payload))
	return nil
}
