package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/procureflow/procureflow-backend/pkg/db/models"
	"github.com/procureflow/procureflow-backend/pkg/enums"
	"github.com/procureflow/procureflow-backend/pkg/logger"
	"github.com/procureflow/procureflow-backend/pkg/outbox"
	"github.com/procureflow/procureflow-backend/pkg/outbox/idempotency"
	"github.com/procureflow/procureflow-backend/pkg/outbox/payloads"
)

const procurementNotificationConsumer = "procurement-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer watches the domain event stream and turns procurement milestones
// into in-app notification rows for the affected party.
type Consumer struct {
	repo         repository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a procurement notification consumer.
func NewConsumer(repo repository, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
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
	fields := map[string]any{
		"message_id": msg.ID,
		"event_type": rawType,
	}
	logCtx := c.logg.WithFields(ctx, fields)

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

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, procurementNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	notification, err := c.buildNotification(eventType, envelope.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to parse payload", err)
		_ = c.idempotency.Delete(ctx, procurementNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	if notification == nil {
		c.logg.Info(logCtx, "event kind not notified")
		return processResult{ack: true}
	}

	if err := c.repo.Create(ctx, notification); err != nil {
		c.logg.Error(logCtx, "notification insert failed", err)
		_ = c.idempotency.Delete(ctx, procurementNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	c.logg.Info(c.logg.WithFields(logCtx, map[string]any{
		"recipient_id": notification.RecipientID.String(),
	}), "recipient notified")
	return processResult{ack: true}
}

// buildNotification maps a domain event onto the notification row for the
// party on the receiving end of the change. Events without a clear recipient
// return nil and are acked without writing anything.
func (c *Consumer) buildNotification(eventType enums.OutboxEventType, data json.RawMessage) (*models.Notification, error) {
	switch eventType {
	case enums.EventRequestApproved, enums.EventRequestRejected:
		var payload payloads.RequestDecisionEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		if payload.RequesterID == uuid.Nil {
			return nil, fmt.Errorf("requester id missing")
		}
		title := "Material request approved"
		message := "Your material request was approved and is now open to vendors."
		if eventType == enums.EventRequestRejected {
			title = "Material request rejected"
			message = "Your material request was rejected."
			if payload.Note != "" {
				message = fmt.Sprintf("Your material request was rejected: %s", payload.Note)
			}
		}
		return &models.Notification{
			RecipientID: payload.RequesterID,
			Type:        enums.NotificationTypeRequestAlert,
			Title:       title,
			Message:     message,
			Link:        stringPtr(fmt.Sprintf("/material-requests/%s", payload.RequestID)),
		}, nil

	case enums.EventOrderCreated:
		var payload payloads.OrderCreatedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		if payload.RequesterID == uuid.Nil {
			return nil, fmt.Errorf("requester id missing")
		}
		return &models.Notification{
			RecipientID: payload.RequesterID,
			Type:        enums.NotificationTypeOrderAlert,
			Title:       "Vendor accepted your request",
			Message:     fmt.Sprintf("A vendor claimed your material request. Purchase order %s was opened.", payload.OrderNumber),
			Link:        stringPtr(fmt.Sprintf("/purchase-orders/%s", payload.OrderID)),
		}, nil

	case enums.EventOrderCancelled:
		var payload payloads.OrderCancelledEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		if payload.VendorID == uuid.Nil {
			return nil, fmt.Errorf("vendor id missing")
		}
		message := "The purchase order was cancelled by the requester."
		if payload.Reason != "" {
			message = fmt.Sprintf("The purchase order was cancelled: %s", payload.Reason)
		}
		return &models.Notification{
			RecipientID: payload.VendorID,
			Type:        enums.NotificationTypeOrderAlert,
			Title:       "Purchase order cancelled",
			Message:     message,
			Link:        stringPtr(fmt.Sprintf("/purchase-orders/%s", payload.OrderID)),
		}, nil

	case enums.EventQuotationSubmitted:
		var payload payloads.QuotationSubmittedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		if payload.RequesterID == uuid.Nil {
			return nil, fmt.Errorf("requester id missing")
		}
		return &models.Notification{
			RecipientID: payload.RequesterID,
			Type:        enums.NotificationTypeQuotationAlert,
			Title:       "New quotation received",
			Message:     fmt.Sprintf("The vendor proposed %s %s.", payload.Total.StringFixed(2), payload.Currency),
			Link:        stringPtr(fmt.Sprintf("/purchase-orders/%s", payload.OrderID)),
		}, nil

	case enums.EventQuotationAccepted, enums.EventQuotationRejected:
		var payload payloads.QuotationDecisionEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		if payload.VendorID == uuid.Nil {
			return nil, fmt.Errorf("vendor id missing")
		}
		title := "Quotation accepted"
		message := "Your quotation was accepted. Submit delivery details to proceed."
		if eventType == enums.EventQuotationRejected {
			title = "Quotation rejected"
			message = "Your quotation was rejected. The negotiation stays open."
			if payload.Note != "" {
				message = fmt.Sprintf("Your quotation was rejected: %s", payload.Note)
			}
		}
		return &models.Notification{
			RecipientID: payload.VendorID,
			Type:        enums.NotificationTypeQuotationAlert,
			Title:       title,
			Message:     message,
			Link:        stringPtr(fmt.Sprintf("/purchase-orders/%s", payload.OrderID)),
		}, nil

	case enums.EventDeliverySubmitted:
		var payload payloads.DeliverySubmittedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		if payload.RequesterID == uuid.Nil {
			return nil, fmt.Errorf("requester id missing")
		}
		message := "The vendor filed delivery details and issued an invoice."
		if payload.TrackingNumber != "" {
			message = fmt.Sprintf("The vendor filed delivery details. Tracking number %s.", payload.TrackingNumber)
		}
		return &models.Notification{
			RecipientID: payload.RequesterID,
			Type:        enums.NotificationTypeDeliveryAlert,
			Title:       "Delivery scheduled",
			Message:     message,
			Link:        stringPtr(fmt.Sprintf("/purchase-orders/%s", payload.OrderID)),
		}, nil

	case enums.EventDeliveryStatusChanged:
		var payload payloads.DeliveryStatusChangedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		if payload.RequesterID == uuid.Nil {
			return nil, fmt.Errorf("requester id missing")
		}
		title := "Delivery update"
		message := fmt.Sprintf("Delivery status changed to %s.", payload.Status)
		if payload.Status == enums.DeliveryStatusDelivered {
			title = "Order delivered"
			message = "Your order was delivered in full."
		}
		return &models.Notification{
			RecipientID: payload.RequesterID,
			Type:        enums.NotificationTypeDeliveryAlert,
			Title:       title,
			Message:     message,
			Link:        stringPtr(fmt.Sprintf("/purchase-orders/%s", payload.OrderID)),
		}, nil
	}

	return nil, nil
}

func stringPtr(value string) *string {
	return &value
}
