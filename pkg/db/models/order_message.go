package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/procureflow/procureflow-backend/pkg/enums"
)

// OrderMessage is one entry in an order's negotiation thread. Structured
// message kinds (quotation, delivery, invoice) carry their details in the
// jsonb payload; plain text messages leave it null.
type OrderMessage struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID              `gorm:"column:order_id;type:uuid;not null;index"`
	SenderID        uuid.UUID              `gorm:"column:sender_id;type:uuid;not null"`
	SenderRole      enums.ActorRole        `gorm:"column:sender_role;type:actor_role;not null"`
	Type            enums.MessageType      `gorm:"column:type;type:message_type;not null"`
	Body            *string                `gorm:"column:body"`
	Payload         json.RawMessage        `gorm:"column:payload;type:jsonb"`
	QuotationStatus *enums.QuotationStatus `gorm:"column:quotation_status;type:quotation_status"`
	ReplyToID       *uuid.UUID             `gorm:"column:reply_to_id;type:uuid"`
	ReadByOwnerAt   *time.Time             `gorm:"column:read_by_owner_at"`
	ReadByVendorAt  *time.Time             `gorm:"column:read_by_vendor_at"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
}
