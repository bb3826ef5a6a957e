package negotiation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow-backend/pkg/db/models"
	"github.com/procureflow/procureflow-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a negotiation repository bound to the provided DB.
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
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) CreateMessage(ctx context.Context, message *models.OrderMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *repository) FindMessage(ctx context.Context, messageID uuid.UUID) (*models.OrderMessage, error) {
	var message models.OrderMessage
	err := r.db.WithContext(ctx).
		Where("id = ?", messageID).
		First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *repository) ListMessages(ctx context.Context, orderID uuid.UUID) ([]models.OrderMessage, error) {
	var messages []models.OrderMessage
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead stamps the reader's receipt column on every counterpart message
// that has not been read yet. Owners read vendor messages and vice versa.
func (r *repository) MarkRead(ctx context.Context, orderID uuid.UUID, reader enums.ActorRole, at time.Time) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.OrderMessage{}).
		Where("order_id = ?", orderID)

	if reader == enums.ActorRoleVendor {
		query = query.
			Where("sender_role <> ?", enums.ActorRoleVendor).
			Where("read_by_vendor_at IS NULL")
		result := query.Update("read_by_vendor_at", at)
		return result.RowsAffected, result.Error
	}

	query = query.
		Where("sender_role = ?", enums.ActorRoleVendor).
		Where("read_by_owner_at IS NULL")
	result := query.Update("read_by_owner_at", at)
	return result.RowsAffected, result.Error
}

func (r *repository) UpdateQuotationStatusGuarded(ctx context.Context, messageID uuid.UUID, from, to enums.QuotationStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.OrderMessage{}).
		Where("id = ?", messageID).
		Where("type = ?", enums.MessageTypeQuotation).
		Where("quotation_status = ?", from).
		Update("quotation_status", to)
	return result.RowsAffected, result.Error
}

func (r *repository) UpdateOrderGuarded(ctx context.Context, orderID uuid.UUID, fromStatuses []enums.OrderStatus, updates map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Where("id = ?", orderID).
		Where("status IN ?", fromStatuses).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// PriceLineItems writes the accepted quotation's per-item prices onto the
// matching order lines, keyed by material name.
func (r *repository) PriceLineItems(ctx context.Context, orderID uuid.UUID, prices []LineItemPrice) error {
	for _, price := range prices {
		err := r.db.WithContext(ctx).
			Model(&models.OrderLineItem{}).
			Where("order_id = ? AND material_name = ?", orderID, price.MaterialName).
			Updates(map[string]any{
				"unit_price": price.UnitPrice,
				"line_total": price.LineTotal,
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}
