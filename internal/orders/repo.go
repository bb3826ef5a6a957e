package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow-backend/pkg/db/models"
	"github.com/procureflow/procureflow-backend/pkg/enums"
	"github.com/procureflow/procureflow-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindRequest(ctx context.Context, requestID uuid.UUID) (*models.MaterialRequest, error) {
	var request models.MaterialRequest
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", requestID).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) FindAssignmentsByRequest(ctx context.Context, requestID uuid.UUID) ([]models.VendorAssignment, error) {
	var assignments []models.VendorAssignment
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("assigned_at ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *repository) CreateAssignment(ctx context.Context, assignment *models.VendorAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *repository) CreateOrder(ctx context.Context, order *models.PurchaseOrder) (*models.PurchaseOrder, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Invoice").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindOrderByRequestAndVendor(ctx context.Context, requestID, vendorID uuid.UUID) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("material_request_id = ? AND vendor_id = ?", requestID, vendorID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := applyOrderFilters(r.db.WithContext(ctx).Model(&models.PurchaseOrder{}), filters)
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, err
		}
		if cursor != nil {
			query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
		}
	}

	var rows []models.PurchaseOrder
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	next := ""
	if len(rows) > normalized {
		boundary := rows[normalized]
		rows = rows[:normalized]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: boundary.CreatedAt, ID: boundary.ID})
	}

	return &OrderList{Orders: summarize(rows), NextCursor: next}, nil
}

func (r *repository) UpdateOrderGuarded(ctx context.Context, orderID uuid.UUID, fromStatuses []enums.OrderStatus, updates map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Where("id = ? AND status IN ?", orderID, fromStatuses).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) ListByStatuses(ctx context.Context, filters OrderFilters) ([]OrderSummary, error) {
	query := applyOrderFilters(r.db.WithContext(ctx).Model(&models.PurchaseOrder{}), filters)

	var rows []models.PurchaseOrder
	if err := query.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return summarize(rows), nil
}

func (r *repository) CountOrders(ctx context.Context, filters OrderFilters) (int64, error) {
	var count int64
	query := applyOrderFilters(r.db.WithContext(ctx).Model(&models.PurchaseOrder{}), filters)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applyOrderFilters(query *gorm.DB, filters OrderFilters) *gorm.DB {
	if filters.VendorID != nil {
		query = query.Where("vendor_id = ?", *filters.VendorID)
	}
	if filters.RequesterID != nil {
		query = query.Where("requester_id = ?", *filters.RequesterID)
	}
	if len(filters.Statuses) > 0 {
		query = query.Where("status IN ?", filters.Statuses)
	}
	if filters.DeliveryStatus != nil {
		query = query.Where("delivery_status = ?", *filters.DeliveryStatus)
	}
	return query
}

func summarize(rows []models.PurchaseOrder) []OrderSummary {
	summaries := make([]OrderSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, OrderSummary{
			ID:                   row.ID,
			OrderNumber:          row.OrderNumber,
			MaterialRequestID:    row.MaterialRequestID,
			VendorID:             row.VendorID,
			RequesterID:          row.RequesterID,
			Status:               row.Status,
			DeliveryStatus:       row.DeliveryStatus,
			AgreedTotal:          row.AgreedTotal,
			Currency:             row.Currency,
			ExpectedDeliveryDate: row.ExpectedDeliveryDate,
			DeliveredAt:          row.DeliveredAt,
			CreatedAt:            row.CreatedAt,
		})
	}
	return summaries
}
