package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/assetline-io/assetline-backend/pkg/config"
	"github.com/assetline-io/assetline-backend/pkg/enums"
	"github.com/assetline-io/assetline-backend/pkg/logger"
	"github.com/assetline-io/assetline-backend/pkg/mail"
	"github.com/assetline-io/assetline-backend/pkg/outbox"
	"github.com/assetline-io/assetline-backend/pkg/outbox/idempotency"
	"github.com/assetline-io/assetline-backend/pkg/outbox/payloads"
	"github.com/assetline-io/assetline-backend/pkg/outbox/registry"
)

const (
	mailerConsumer        = "mailer-worker"
	initialRetryBackoff   = 250 * time.Millisecond
	defaultPayloadVersion = 1
)

// Consumer watches domain events and turns them into outbound email.
type Consumer struct {
	sender       mail.Sender
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	decoders     *registry.DecoderRegistry
	cfg          config.MailConfig
	logg         *logger.Logger
}

// NewConsumer builds the email consumer.
func NewConsumer(sender mail.Sender, subscription *pubsub.Subscriber, manager *idempotency.Manager, cfg config.MailConfig, logg *logger.Logger) (*Consumer, error) {
	if sender == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("notification subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		sender:       sender,
		subscription: subscription,
		idempotency:  manager,
		decoders:     defaultDecoders(),
		cfg:          cfg,
		logg:         logg,
	}, nil
}

func defaultDecoders() *registry.DecoderRegistry {
	reg := registry.NewDecoderRegistry()
	reg.Register(enums.EventRequestSubmitted, defaultPayloadVersion, func(payload json.RawMessage) (interface{}, error) {
		var out payloads.RequestSubmittedEvent
		if err := json.Unmarshal(payload, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	reg.Register(enums.EventRequestApproved, defaultPayloadVersion, func(payload json.RawMessage) (interface{}, error) {
		var out payloads.RequestApprovedEvent
		if err := json.Unmarshal(payload, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	reg.Register(enums.EventNotificationRequested, defaultPayloadVersion, func(payload json.RawMessage) (interface{}, error) {
		var out payloads.NotificationRequestedEvent
		if err := json.Unmarshal(payload, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	return reg
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	rawType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": rawType,
	})

	eventType, err := enums.ParseOutboxEventType(rawType)
	if err != nil {
		c.logg.Info(logCtx, "skipping unknown event type")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, mailerConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	version := envelope.Version
	if version == 0 {
		version = defaultPayloadVersion
	}

	payload, err := c.decoders.Decode(eventType, version, envelope.Data)
	if err != nil {
		// Nothing registered means nobody wants an email for this event.
		c.logg.Info(logCtx, "no email handler for event")
		return processResult{ack: true}
	}

	message, ok := c.compose(payload)
	if !ok {
		c.logg.Info(logCtx, "event produced no email")
		return processResult{ack: true}
	}

	if err := c.deliver(ctx, message); err != nil {
		c.logg.Error(logCtx, "email delivery failed", err)
		_ = c.idempotency.Delete(ctx, mailerConsumer, eventID)
		return processResult{nack: true}
	}

	c.logg.Info(c.logg.WithFields(logCtx, map[string]any{"to": message.To}), "email sent")
	return processResult{ack: true}
}

func (c *Consumer) deliver(ctx context.Context, message mail.Message) error {
	maxRetries := c.cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := retry.WithMaxRetries(uint64(maxRetries), retry.NewExponential(initialRetryBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := c.sender.Send(ctx, message); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (c *Consumer) compose(payload interface{}) (mail.Message, bool) {
	switch event := payload.(type) {
	case *payloads.RequestSubmittedEvent:
		return c.composeSubmitted(event)
	case *payloads.RequestApprovedEvent:
		return composeApproved(event)
	case *payloads.NotificationRequestedEvent:
		return composeNotification(event)
	default:
		return mail.Message{}, false
	}
}

func (c *Consumer) composeSubmitted(event *payloads.RequestSubmittedEvent) (mail.Message, bool) {
	if c.cfg.AdminEmail == "" {
		return mail.Message{}, false
	}
	body := fmt.Sprintf(
		"A new asset request is waiting for review.\r\n\r\nAsset: %s\r\nQuantity: %d\r\nRequested by: %s\r\nRequest ID: %s\r\n",
		event.AssetName, event.Quantity, event.UserEmail, event.RequestID,
	)
	return mail.Message{
		To:      []string{c.cfg.AdminEmail},
		Subject: fmt.Sprintf("New asset request: %s", event.AssetName),
		Body:    body,
	}, true
}

func composeApproved(event *payloads.RequestApprovedEvent) (mail.Message, bool) {
	if event.UserEmail == "" {
		return mail.Message{}, false
	}
	unit := event.Unit
	if unit == "" {
		unit = "pcs"
	}
	body := fmt.Sprintf(
		"Your asset request has been approved.\r\n\r\nAsset: %s\r\nQuantity: %d %s\r\nApproved by: %s\r\nApproved at: %s\r\n",
		event.AssetName, event.Quantity, unit, event.ApprovedBy, event.ApprovedAt.Format(time.RFC1123),
	)
	return mail.Message{
		To:      []string{event.UserEmail},
		Subject: fmt.Sprintf("Asset request approved: %s", event.AssetName),
		Body:    body,
	}, true
}

func composeNotification(event *payloads.NotificationRequestedEvent) (mail.Message, bool) {
	if event.UserEmail == "" {
		return mail.Message{}, false
	}
	body := fmt.Sprintf(
		"There is an update on your asset request %s.\r\nPlease sign in to review the details.\r\n",
		event.RequestID,
	)
	return mail.Message{
		To:      []string{event.UserEmail},
		Subject: "Asset request update",
		Body:    body,
	}, true
}
