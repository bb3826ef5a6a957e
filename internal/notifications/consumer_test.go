package notifications

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/procureflow/procureflow-backend/pkg/enums"
	"github.com/procureflow/procureflow-backend/pkg/outbox/payloads"
)

func mustMarshal(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	return raw
}

func TestBuildNotificationRouting(t *testing.T) {
	consumer := &Consumer{}
	requester := uuid.New()
	vendor := uuid.New()
	orderID := uuid.New()

	cases := []struct {
		name      string
		eventType enums.OutboxEventType
		payload   any
		recipient uuid.UUID
		kind      enums.NotificationType
	}{
		{
			name:      "request approved notifies requester",
			eventType: enums.EventRequestApproved,
			payload:   payloads.RequestDecisionEvent{RequestID: uuid.New(), RequesterID: requester, Status: enums.RequestStatusApproved},
			recipient: requester,
			kind:      enums.NotificationTypeRequestAlert,
		},
		{
			name:      "order created notifies requester",
			eventType: enums.EventOrderCreated,
			payload:   payloads.OrderCreatedEvent{OrderID: orderID, OrderNumber: "PO-9", RequesterID: requester, VendorID: vendor},
			recipient: requester,
			kind:      enums.NotificationTypeOrderAlert,
		},
		{
			name:      "order cancelled notifies vendor",
			eventType: enums.EventOrderCancelled,
			payload:   payloads.OrderCancelledEvent{OrderID: orderID, VendorID: vendor, Reason: "budget cut"},
			recipient: vendor,
			kind:      enums.NotificationTypeOrderAlert,
		},
		{
			name:      "quotation submitted notifies requester",
			eventType: enums.EventQuotationSubmitted,
			payload: payloads.QuotationSubmittedEvent{
				OrderID:     orderID,
				MessageID:   uuid.New(),
				VendorID:    vendor,
				RequesterID: requester,
				Total:       decimal.RequireFromString("1250.00"),
				Currency:    enums.CurrencyUSD,
			},
			recipient: requester,
			kind:      enums.NotificationTypeQuotationAlert,
		},
		{
			name:      "quotation accepted notifies vendor",
			eventType: enums.EventQuotationAccepted,
			payload:   payloads.QuotationDecisionEvent{OrderID: orderID, MessageID: uuid.New(), VendorID: vendor, Status: enums.QuotationStatusAccepted},
			recipient: vendor,
			kind:      enums.NotificationTypeQuotationAlert,
		},
		{
			name:      "delivery submitted notifies requester",
			eventType: enums.EventDeliverySubmitted,
			payload:   payloads.DeliverySubmittedEvent{OrderID: orderID, RequesterID: requester, TrackingNumber: "TRK-1"},
			recipient: requester,
			kind:      enums.NotificationTypeDeliveryAlert,
		},
		{
			name:      "delivery status change notifies requester",
			eventType: enums.EventDeliveryStatusChanged,
			payload:   payloads.DeliveryStatusChangedEvent{OrderID: orderID, RequesterID: requester, Status: enums.DeliveryStatusDelivered},
			recipient: requester,
			kind:      enums.NotificationTypeDeliveryAlert,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			notification, err := consumer.buildNotification(tc.eventType, mustMarshal(t, tc.payload))
			if err != nil {
				t.Fatalf("expected success got %v", err)
			}
			if notification == nil {
				t.Fatal("expected a notification")
			}
			if notification.RecipientID != tc.recipient {
				t.Fatalf("wrong recipient: %s", notification.RecipientID)
			}
			if notification.Type != tc.kind {
				t.Fatalf("wrong kind: %s", notification.Type)
			}
			if notification.Title == "" || notification.Message == "" {
				t.Fatalf("empty copy: %+v", notification)
			}
			if notification.Link == nil {
				t.Fatal("expected a deep link")
			}
		})
	}
}

func TestBuildNotificationSkipsUnaddressedEvents(t *testing.T) {
	consumer := &Consumer{}

	for _, eventType := range []enums.OutboxEventType{
		enums.EventRequestCreated,
		enums.EventVendorAssigned,
		enums.EventMessagePosted,
		enums.EventInvoiceIssued,
	} {
		notification, err := consumer.buildNotification(eventType, json.RawMessage(`{}`))
		if err != nil {
			t.Fatalf("%s: expected nil error got %v", eventType, err)
		}
		if notification != nil {
			t.Fatalf("%s: expected no notification got %+v", eventType, notification)
		}
	}
}

func TestBuildNotificationMissingRecipientFails(t *testing.T) {
	consumer := &Consumer{}

	_, err := consumer.buildNotification(enums.EventOrderCancelled,
		mustMarshal(t, payloads.OrderCancelledEvent{OrderID: uuid.New()}))
	if err == nil {
		t.Fatal("expected error for missing vendor id")
	}
}
