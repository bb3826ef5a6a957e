package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow-backend/pkg/db/models"
	"github.com/procureflow/procureflow-backend/pkg/enums"
	"github.com/procureflow/procureflow-backend/pkg/pagination"
)

// Repository defines persistence operations for purchase orders and the
// request/assignment rows the accept flow touches.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindRequest(ctx context.Context, requestID uuid.UUID) (*models.MaterialRequest, error)
	FindAssignmentsByRequest(ctx context.Context, requestID uuid.UUID) ([]models.VendorAssignment, error)
	CreateAssignment(ctx context.Context, assignment *models.VendorAssignment) error
	CreateOrder(ctx context.Context, order *models.PurchaseOrder) (*models.PurchaseOrder, error)
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.PurchaseOrder, error)
	FindOrderByRequestAndVendor(ctx context.Context, requestID, vendorID uuid.UUID) (*models.PurchaseOrder, error)
	List(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error)
	UpdateOrderGuarded(ctx context.Context, orderID uuid.UUID, fromStatuses []enums.OrderStatus, updates map[string]any) (int64, error)
	ListByStatuses(ctx context.Context, filters OrderFilters) ([]OrderSummary, error)
	CountOrders(ctx context.Context, filters OrderFilters) (int64, error)
}
