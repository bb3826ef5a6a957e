package requests

import (
	"time"

	"github.com/google/uuid"

	"github.com/procureflow/procureflow-backend/pkg/db/models"
	"github.com/procureflow/procureflow-backend/pkg/enums"
)

// ItemInput is one requested material line on a create call.
type ItemInput struct {
	MaterialName  string
	Specification *string
	Quantity      int
	Unit          string
	Notes         *string
}

// CreateInput carries everything needed to open a material request.
type CreateInput struct {
	RequesterID uuid.UUID
	Title       string
	Description *string
	Priority    enums.RequestPriority
	NeededBy    *time.Time
	Items       []ItemInput
}

// DecisionInput captures an approve or reject call on a pending request.
type DecisionInput struct {
	RequestID   uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   string
	Note        *string
}

// ListFilters describe the inputs supported by the request list.
type ListFilters struct {
	// Statuses restricts the list to the given statuses. Vendors are
	// always pinned to pending/approved regardless of what they ask for.
	Statuses    []enums.RequestStatus
	RequesterID *uuid.UUID
	Priority    *enums.RequestPriority
}

// RequestSummary is the list-row projection of a material request.
type RequestSummary struct {
	ID        uuid.UUID             `json:"id"`
	Title     string                `json:"title"`
	Priority  enums.RequestPriority `json:"priority"`
	Status    enums.RequestStatus   `json:"status"`
	NeededBy  *time.Time            `json:"needed_by,omitempty"`
	ItemCount int                   `json:"item_count"`
	CreatedAt time.Time             `json:"created_at"`
}

// RequestList wraps the paginated requests plus the next page cursor.
type RequestList struct {
	Requests   []RequestSummary `json:"requests"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// RequestDetail is the full projection returned by the detail endpoint.
type RequestDetail struct {
	Request     *models.MaterialRequest   `json:"request"`
	Items       []models.RequestItem      `json:"items"`
	Assignments []models.VendorAssignment `json:"assignments"`
}
