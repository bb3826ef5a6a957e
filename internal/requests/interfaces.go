package requests

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow-backend/pkg/db/models"
	"github.com/procureflow/procureflow-backend/pkg/enums"
	"github.com/procureflow/procureflow-backend/pkg/pagination"
)

// Repository defines persistence operations for material requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.MaterialRequest) (*models.MaterialRequest, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.MaterialRequest, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*RequestList, error)
	UpdateStatusGuarded(ctx context.Context, id uuid.UUID, from, to enums.RequestStatus, decidedBy uuid.UUID, decidedAt time.Time, note *string) (int64, error)
}
