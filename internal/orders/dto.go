package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/procureflow/procureflow-backend/pkg/db/models"
	"github.com/procureflow/procureflow-backend/pkg/enums"
)

// AcceptInput carries a vendor's claim on a material request.
type AcceptInput struct {
	RequestID uuid.UUID
	VendorID  uuid.UUID
	ActorRole string
}

// AcceptResult reports the order backing the vendor's claim and whether
// the call created it or found it already in place.
type AcceptResult struct {
	Order   *models.PurchaseOrder `json:"order"`
	Created bool                  `json:"created"`
}

// CancelInput captures an owner cancelling a purchase order.
type CancelInput struct {
	OrderID     uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   enums.ActorRole
	Reason      *string
}

// OrderFilters describe the inputs supported by the order list.
type OrderFilters struct {
	VendorID       *uuid.UUID
	RequesterID    *uuid.UUID
	Statuses       []enums.OrderStatus
	DeliveryStatus *enums.DeliveryStatus
}

// OrderSummary is the list-row projection of a purchase order.
type OrderSummary struct {
	ID                   uuid.UUID            `json:"id"`
	OrderNumber          string               `json:"order_number"`
	MaterialRequestID    uuid.UUID            `json:"material_request_id"`
	VendorID             uuid.UUID            `json:"vendor_id"`
	RequesterID          uuid.UUID            `json:"requester_id"`
	Status               enums.OrderStatus    `json:"status"`
	DeliveryStatus       enums.DeliveryStatus `json:"delivery_status"`
	AgreedTotal          *decimal.Decimal     `json:"agreed_total,omitempty"`
	Currency             enums.Currency       `json:"currency"`
	ExpectedDeliveryDate *time.Time           `json:"expected_delivery_date,omitempty"`
	DeliveredAt          *time.Time           `json:"delivered_at,omitempty"`
	CreatedAt            time.Time            `json:"created_at"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// DeliveryOverview splits orders into in-flight and finished buckets for
// the admin dashboard.
type DeliveryOverview struct {
	ActiveDeliveries []OrderSummary `json:"active_deliveries"`
	Delivered        []OrderSummary `json:"delivered"`
	TotalCount       int            `json:"total_count"`
}
