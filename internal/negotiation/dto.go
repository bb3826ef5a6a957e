package negotiation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/procureflow/procureflow-backend/pkg/enums"
)

// QuotationItem is one priced line inside a quotation payload.
type QuotationItem struct {
	MaterialName string          `json:"material_name"`
	Quantity     int             `json:"quantity"`
	Unit         string          `json:"unit"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

// QuotationPayload is the structured jsonb body of a quotation message.
type QuotationPayload struct {
	Amount        decimal.Decimal `json:"amount"`
	Currency      enums.Currency  `json:"currency"`
	ValidUntil    *time.Time      `json:"valid_until,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	Items         []QuotationItem `json:"items,omitempty"`
	PaymentTerms  *string         `json:"payment_terms,omitempty"`
	DeliveryTerms *string         `json:"delivery_terms,omitempty"`
}

// LineItemPrice carries an accepted quotation price onto an order line.
type LineItemPrice struct {
	MaterialName string
	UnitPrice    decimal.Decimal
	LineTotal    decimal.Decimal
}

// PostMessageInput carries a plain chat message onto an order thread.
type PostMessageInput struct {
	OrderID    uuid.UUID
	SenderID   uuid.UUID
	SenderRole enums.ActorRole
	Body       string
	ReplyToID  *uuid.UUID
}

// SubmitQuotationInput carries a vendor's priced proposal.
type SubmitQuotationInput struct {
	OrderID  uuid.UUID
	VendorID uuid.UUID
	Payload  QuotationPayload
}

// DecideQuotationInput captures the owner resolving a quotation message.
type DecideQuotationInput struct {
	OrderID     uuid.UUID
	MessageID   uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   enums.ActorRole
	Note        *string
}
