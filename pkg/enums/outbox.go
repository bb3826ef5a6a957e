package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateMaterialRequest OutboxAggregateType = "material_request"
	AggregatePurchaseOrder   OutboxAggregateType = "purchase_order"
	AggregateNotification    OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateMaterialRequest,
	AggregatePurchaseOrder,
	AggregateNotification,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventRequestCreated        OutboxEventType = "request_created"
	EventRequestApproved       OutboxEventType = "request_approved"
	EventRequestRejected       OutboxEventType = "request_rejected"
	EventVendorAssigned        OutboxEventType = "vendor_assigned"
	EventOrderCreated          OutboxEventType = "order_created"
	EventOrderCancelled        OutboxEventType = "order_cancelled"
	EventQuotationSubmitted    OutboxEventType = "quotation_submitted"
	EventQuotationAccepted     OutboxEventType = "quotation_accepted"
	EventQuotationRejected     OutboxEventType = "quotation_rejected"
	EventMessagePosted         OutboxEventType = "message_posted"
	EventDeliverySubmitted     OutboxEventType = "delivery_submitted"
	EventDeliveryStatusChanged OutboxEventType = "delivery_status_changed"
	EventInvoiceIssued         OutboxEventType = "invoice_issued"
	EventNotificationRequested OutboxEventType = "notification_requested"
)

var validOutboxEventTypes = []OutboxEventType{
	EventRequestCreated,
	EventRequestApproved,
	EventRequestRejected,
	EventVendorAssigned,
	EventOrderCreated,
	EventOrderCancelled,
	EventQuotationSubmitted,
	EventQuotationAccepted,
	EventQuotationRejected,
	EventMessagePosted,
	EventDeliverySubmitted,
	EventDeliveryStatusChanged,
	EventInvoiceIssued,
	EventNotificationRequested,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
