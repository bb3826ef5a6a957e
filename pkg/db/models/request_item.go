package models

import (
	"time"

	"github.com/google/uuid"
)

// RequestItem captures one requested material line within a request.
type RequestItem struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RequestID     uuid.UUID `gorm:"column:request_id;type:uuid;not null"`
	MaterialName  string    `gorm:"column:material_name;not null"`
	Specification *string   `gorm:"column:specification"`
	Quantity      int       `gorm:"column:quantity;not null"`
	Unit          string    `gorm:"column:unit;not null"`
	Notes         *string   `gorm:"column:notes"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
