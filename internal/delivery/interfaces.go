package delivery

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow-backend/pkg/db/models"
	"github.com/procureflow/procureflow-backend/pkg/enums"
)

// Repository is the persistence surface for delivery tracking and invoices.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.PurchaseOrder, error)
	UpdateOrderGuarded(ctx context.Context, orderID uuid.UUID, fromStatuses []enums.OrderStatus, updates map[string]any) (int64, error)
	UpdateLineItemsDelivery(ctx context.Context, orderID uuid.UUID, status enums.DeliveryStatus) error
	CreateInvoice(ctx context.Context, invoice *models.Invoice) error
	FindInvoiceByOrder(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error)
	CreateMessage(ctx context.Context, message *models.OrderMessage) error
}
