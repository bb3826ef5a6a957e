package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/procureflow/procureflow-backend/pkg/enums"
)

// MaterialRequest is the demand side of procurement: a buyer asks for
// materials and vendors pick the request up once it is approved.
type MaterialRequest struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RequesterID  uuid.UUID             `gorm:"column:requester_id;type:uuid;not null"`
	Title        string                `gorm:"column:title;not null"`
	Description  *string               `gorm:"column:description"`
	Priority     enums.RequestPriority `gorm:"column:priority;type:request_priority;not null;default:'medium'"`
	Status       enums.RequestStatus   `gorm:"column:status;type:request_status;not null;default:'pending'"`
	NeededBy     *time.Time            `gorm:"column:needed_by"`
	DecidedBy    *uuid.UUID            `gorm:"column:decided_by;type:uuid"`
	DecidedAt    *time.Time            `gorm:"column:decided_at"`
	DecisionNote *string               `gorm:"column:decision_note"`
	Items        []RequestItem         `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
	Assignments  []VendorAssignment    `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
