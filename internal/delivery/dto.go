package delivery

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/procureflow/procureflow-backend/pkg/db/models"
	"github.com/procureflow/procureflow-backend/pkg/enums"
)

// DetailsInput carries the tracking and billing information a vendor files
// once a quotation has been accepted.
type DetailsInput struct {
	OrderID              uuid.UUID
	VendorID             uuid.UUID
	ExpectedDeliveryDate time.Time
	Carrier              *string
	TrackingNumber       *string
	Note                 *string
	InvoiceDueDate       *time.Time
	InvoiceNotes         *string
}

// DetailsResult reports the order and the invoice generated alongside it.
type DetailsResult struct {
	Order   *models.PurchaseOrder
	Invoice *models.Invoice
	Created bool
}

// StatusInput carries a delivery progress update from the vendor.
type StatusInput struct {
	OrderID  uuid.UUID
	VendorID uuid.UUID
	Status   enums.DeliveryStatus
	Note     *string
}

// DeliveryPayload is the structured jsonb body of a delivery message.
type DeliveryPayload struct {
	ExpectedDeliveryDate time.Time `json:"expected_delivery_date"`
	Carrier              *string   `json:"carrier,omitempty"`
	TrackingNumber       *string   `json:"tracking_number,omitempty"`
	Note                 *string   `json:"note,omitempty"`
}

// InvoicePayload is the structured jsonb body of an invoice message.
type InvoicePayload struct {
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      enums.Currency  `json:"currency"`
	IssuedAt      time.Time       `json:"issued_at"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
}
