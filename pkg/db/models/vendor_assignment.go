package models

import (
	"time"

	"github.com/google/uuid"
)

// VendorAssignment records a vendor self-assigning to an approved request.
// The unique index on request_id alone allows exactly one claim per request;
// a second vendor's insert fails at the constraint even when both raced past
// the pre-insert check.
type VendorAssignment struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RequestID  uuid.UUID `gorm:"column:request_id;type:uuid;not null;uniqueIndex:uq_vendor_assignments_request"`
	VendorID   uuid.UUID `gorm:"column:vendor_id;type:uuid;not null;index"`
	AssignedBy uuid.UUID `gorm:"column:assigned_by;type:uuid;not null"`
	AssignedAt time.Time `gorm:"column:assigned_at;autoCreateTime"`
}
