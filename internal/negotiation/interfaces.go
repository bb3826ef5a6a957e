package negotiation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow-backend/pkg/db/models"
	"github.com/procureflow/procureflow-backend/pkg/enums"
)

// Repository is the persistence surface for order threads and quotations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.PurchaseOrder, error)
	CreateMessage(ctx context.Context, message *models.OrderMessage) error
	FindMessage(ctx context.Context, messageID uuid.UUID) (*models.OrderMessage, error)
	ListMessages(ctx context.Context, orderID uuid.UUID) ([]models.OrderMessage, error)
	MarkRead(ctx context.Context, orderID uuid.UUID, reader enums.ActorRole, at time.Time) (int64, error)
	UpdateQuotationStatusGuarded(ctx context.Context, messageID uuid.UUID, from, to enums.QuotationStatus) (int64, error)
	UpdateOrderGuarded(ctx context.Context, orderID uuid.UUID, fromStatuses []enums.OrderStatus, updates map[string]any) (int64, error)
	PriceLineItems(ctx context.Context, orderID uuid.UUID, prices []LineItemPrice) error
}
