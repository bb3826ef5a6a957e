package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/procureflow/procureflow-backend/pkg/enums"
)

// RequestCreatedEvent signals a new material request awaiting review.
type RequestCreatedEvent struct {
	RequestID   uuid.UUID             `json:"request_id"`
	RequesterID uuid.UUID             `json:"requester_id"`
	Priority    enums.RequestPriority `json:"priority"`
	ItemCount   int                   `json:"item_count"`
}

// RequestDecisionEvent is emitted when an admin approves or rejects a request.
type RequestDecisionEvent struct {
	RequestID   uuid.UUID           `json:"request_id"`
	RequesterID uuid.UUID           `json:"requester_id"`
	DecidedBy   uuid.UUID           `json:"decided_by"`
	Status      enums.RequestStatus `json:"status"`
	Note        string              `json:"note,omitempty"`
}

// VendorAssignedEvent records a vendor claiming an approved request.
type VendorAssignedEvent struct {
	RequestID uuid.UUID `json:"request_id"`
	VendorID  uuid.UUID `json:"vendor_id"`
}

// OrderCreatedEvent signals a purchase order spawned from a vendor assignment.
type OrderCreatedEvent struct {
	OrderID           uuid.UUID `json:"order_id"`
	OrderNumber       string    `json:"order_number"`
	MaterialRequestID uuid.UUID `json:"material_request_id"`
	VendorID          uuid.UUID `json:"vendor_id"`
	RequesterID       uuid.UUID `json:"requester_id"`
}

// OrderCancelledEvent is emitted whenever a non-terminal order is cancelled.
type OrderCancelledEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	VendorID    uuid.UUID `json:"vendor_id"`
	CancelledAt time.Time `json:"cancelled_at"`
	Reason      string    `json:"reason,omitempty"`
}

// QuotationSubmittedEvent carries a vendor's priced proposal.
type QuotationSubmittedEvent struct {
	OrderID     uuid.UUID       `json:"order_id"`
	MessageID   uuid.UUID       `json:"message_id"`
	VendorID    uuid.UUID       `json:"vendor_id"`
	RequesterID uuid.UUID       `json:"requester_id"`
	Total       decimal.Decimal `json:"total"`
	Currency    enums.Currency  `json:"currency"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// QuotationDecisionEvent reports the owner accepting or rejecting a quotation.
type QuotationDecisionEvent struct {
	OrderID   uuid.UUID             `json:"order_id"`
	MessageID uuid.UUID             `json:"message_id"`
	VendorID  uuid.UUID             `json:"vendor_id"`
	DecidedBy uuid.UUID             `json:"decided_by"`
	Status    enums.QuotationStatus `json:"status"`
	Note      string                `json:"note,omitempty"`
}

// MessagePostedEvent is emitted for plain chat messages in negotiation threads.
type MessagePostedEvent struct {
	OrderID    uuid.UUID       `json:"order_id"`
	MessageID  uuid.UUID       `json:"message_id"`
	SenderID   uuid.UUID       `json:"sender_id"`
	SenderRole enums.ActorRole `json:"sender_role"`
}

// DeliverySubmittedEvent carries the delivery details a vendor filed.
type DeliverySubmittedEvent struct {
	OrderID              uuid.UUID  `json:"order_id"`
	RequesterID          uuid.UUID  `json:"requester_id"`
	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date,omitempty"`
	Carrier              string     `json:"carrier,omitempty"`
	TrackingNumber       string     `json:"tracking_number,omitempty"`
}

// DeliveryStatusChangedEvent reports delivery progress on an order.
type DeliveryStatusChangedEvent struct {
	OrderID     uuid.UUID            `json:"order_id"`
	RequesterID uuid.UUID            `json:"requester_id"`
	OrderStatus enums.OrderStatus    `json:"order_status"`
	Status      enums.DeliveryStatus `json:"status"`
	DeliveredAt *time.Time           `json:"delivered_at,omitempty"`
}

// InvoiceIssuedEvent signals an invoice attached to an order.
type InvoiceIssuedEvent struct {
	OrderID       uuid.UUID       `json:"order_id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      enums.Currency  `json:"currency"`
	IssuedAt      time.Time       `json:"issued_at"`
}

// NotificationRequestedEvent tells downstream systems to alert a user.
type NotificationRequestedEvent struct {
	RecipientID uuid.UUID              `json:"recipient_id"`
	Type        enums.NotificationType `json:"type"`
	Title       string                 `json:"title"`
	Message     string                 `json:"message"`
	Link        string                 `json:"link,omitempty"`
}
