package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/procureflow/procureflow-backend/pkg/enums"
)

// PurchaseOrder is the per-vendor negotiation and fulfillment record spawned
// when a vendor accepts a material request. One order exists per
// (material_request_id, vendor_id) pair.
type PurchaseOrder struct {
	ID                   uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber          string               `gorm:"column:order_number;not null;uniqueIndex"`
	MaterialRequestID    uuid.UUID            `gorm:"column:material_request_id;type:uuid;not null;uniqueIndex:uq_purchase_orders_request_vendor"`
	VendorID             uuid.UUID            `gorm:"column:vendor_id;type:uuid;not null;uniqueIndex:uq_purchase_orders_request_vendor"`
	RequesterID          uuid.UUID            `gorm:"column:requester_id;type:uuid;not null"`
	Status               enums.OrderStatus    `gorm:"column:status;type:order_status;not null;default:'sent'"`
	Currency             enums.Currency       `gorm:"column:currency;type:text;not null;default:'USD'"`
	ChatClosed           bool                 `gorm:"column:chat_closed;not null;default:false"`
	AcceptedQuotationID  *uuid.UUID           `gorm:"column:accepted_quotation_id;type:uuid"`
	AgreedTotal          *decimal.Decimal     `gorm:"column:agreed_total;type:numeric(14,2)"`
	DeliveryStatus       enums.DeliveryStatus `gorm:"column:delivery_status;type:delivery_status;not null;default:'pending'"`
	ExpectedDeliveryDate *time.Time           `gorm:"column:expected_delivery_date"`
	Carrier              *string              `gorm:"column:carrier"`
	TrackingNumber       *string              `gorm:"column:tracking_number"`
	DeliveryNote         *string              `gorm:"column:delivery_note"`
	DeliveredAt          *time.Time           `gorm:"column:delivered_at"`
	CancelledAt          *time.Time           `gorm:"column:cancelled_at"`
	CancelReason         *string              `gorm:"column:cancel_reason"`
	Items                []OrderLineItem      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Messages             []OrderMessage       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Invoice              *Invoice             `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt            time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
