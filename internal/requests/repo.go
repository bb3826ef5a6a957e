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

type repository struct {
	db *gorm.DB
}

// NewRepository builds a material request repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.MaterialRequest) (*models.MaterialRequest, error) {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.MaterialRequest, error) {
	var request models.MaterialRequest
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Assignments").
		Where("id = ?", id).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) (*RequestList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.MaterialRequest{})
	if len(filters.Statuses) > 0 {
		query = query.Where("status IN ?", filters.Statuses)
	}
	if filters.RequesterID != nil {
		query = query.Where("requester_id = ?", *filters.RequesterID)
	}
	if filters.Priority != nil {
		query = query.Where("priority = ?", *filters.Priority)
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, err
		}
		if cursor != nil {
			query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
		}
	}

	var rows []models.MaterialRequest
	if err := query.
		Preload("Items").
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

	summaries := make([]RequestSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, RequestSummary{
			ID:        row.ID,
			Title:     row.Title,
			Priority:  row.Priority,
			Status:    row.Status,
			NeededBy:  row.NeededBy,
			ItemCount: len(row.Items),
			CreatedAt: row.CreatedAt,
		})
	}

	return &RequestList{Requests: summaries, NextCursor: next}, nil
}

func (r *repository) UpdateStatusGuarded(ctx context.Context, id uuid.UUID, from, to enums.RequestStatus, decidedBy uuid.UUID, decidedAt time.Time, note *string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.MaterialRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":        to,
			"decided_by":    decidedBy,
			"decided_at":    decidedAt,
			"decision_note": note,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
