package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/procureflow/procureflow-backend/pkg/enums"
)

// OrderLineItem snapshots a requested material line onto a purchase order.
// Unit prices are filled in once a quotation is accepted.
type OrderLineItem struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID        `gorm:"column:order_id;type:uuid;not null"`
	RequestItemID *uuid.UUID       `gorm:"column:request_item_id;type:uuid"`
	MaterialName  string           `gorm:"column:material_name;not null"`
	Specification *string          `gorm:"column:specification"`
	Quantity      int              `gorm:"column:quantity;not null"`
	Unit          string           `gorm:"column:unit;not null"`
	UnitPrice     *decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2)"`
	LineTotal     *decimal.Decimal `gorm:"column:line_total;type:numeric(14,2)"`

	DeliveredQuantity int                  `gorm:"column:delivered_quantity;not null;default:0"`
	DeliveryStatus    enums.DeliveryStatus `gorm:"column:delivery_status;type:delivery_status;not null;default:pending"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
