package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/procureflow/procureflow-backend/pkg/enums"
)

// Invoice is issued by the vendor once delivery details are submitted.
type Invoice struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID       `gorm:"column:order_id;type:uuid;not null;uniqueIndex:uq_invoices_order"`
	InvoiceNumber string          `gorm:"column:invoice_number;not null;uniqueIndex"`
	Amount        decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	Currency      enums.Currency  `gorm:"column:currency;type:text;not null;default:'USD'"`
	IssuedAt      time.Time       `gorm:"column:issued_at;not null"`
	DueDate       *time.Time      `gorm:"column:due_date"`
	Notes         *string         `gorm:"column:notes"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}
