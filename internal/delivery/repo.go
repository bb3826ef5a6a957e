package delivery

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow-backend/pkg/db/models"
	"github.com/procureflow/procureflow-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a delivery repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Invoice").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateOrderGuarded(ctx context.Context, orderID uuid.UUID, fromStatuses []enums.OrderStatus, updates map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Where("id = ?", orderID).
		Where("status IN ?", fromStatuses).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// UpdateLineItemsDelivery rolls a delivery status report down to the order's
// line items. A delivered report also fills delivered_quantity up to the
// ordered quantity.
func (r *repository) UpdateLineItemsDelivery(ctx context.Context, orderID uuid.UUID, status enums.DeliveryStatus) error {
	updates := map[string]any{"delivery_status": status}
	if status == enums.DeliveryStatusDelivered {
		updates["delivered_quantity"] = gorm.Expr("quantity")
	}
	return r.db.WithContext(ctx).
		Model(&models.OrderLineItem{}).
		Where("order_id = ?", orderID).
		Updates(updates).Error
}

func (r *repository) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *repository) FindInvoiceByOrder(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) CreateMessage(ctx context.Context, message *models.OrderMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}
