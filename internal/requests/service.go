package requests

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow-backend/pkg/db/models"
	"github.com/procureflow/procureflow-backend/pkg/enums"
	pkgerrors "github.com/procureflow/procureflow-backend/pkg/errors"
	"github.com/procureflow/procureflow-backend/pkg/outbox"
	"github.com/procureflow/procureflow-backend/pkg/outbox/payloads"
	"github.com/procureflow/procureflow-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ListParams configures the role-aware request list.
type ListParams struct {
	ActorUserID uuid.UUID
	ActorRole   enums.ActorRole
	Pagination  pagination.Params
	Filters     ListFilters
}

// Service defines material request lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.MaterialRequest, error)
	List(ctx context.Context, params ListParams) (*RequestList, error)
	Get(ctx context.Context, id uuid.UUID) (*RequestDetail, error)
	Approve(ctx context.Context, input DecisionInput) error
	Reject(ctx context.Context, input DecisionInput) error
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds a material request service with the required dependencies.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("requests repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outbox}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.MaterialRequest, error) {
	if input.RequesterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}
	for i, item := range input.Items {
		if strings.TrimSpace(item.MaterialName) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: material name required", i))
		}
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: quantity must be positive", i))
		}
		if strings.TrimSpace(item.Unit) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: unit required", i))
		}
	}
	if input.NeededBy != nil && !input.NeededBy.After(time.Now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "needed_by must be in the future")
	}

	priority := input.Priority
	if priority == "" {
		priority = enums.RequestPriorityMedium
	}
	if !priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority")
	}

	request := &models.MaterialRequest{
		RequesterID: input.RequesterID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Priority:    priority,
		Status:      enums.RequestStatusPending,
		NeededBy:    input.NeededBy,
	}
	for _, item := range input.Items {
		request.Items = append(request.Items, models.RequestItem{
			MaterialName:  strings.TrimSpace(item.MaterialName),
			Specification: item.Specification,
			Quantity:      item.Quantity,
			Unit:          strings.TrimSpace(item.Unit),
			Notes:         item.Notes,
		})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.Create(ctx, request)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create material request")
		}
		request = created

		event := outbox.DomainEvent{
			EventType:     enums.EventRequestCreated,
			AggregateType: enums.AggregateMaterialRequest,
			AggregateID:   request.ID,
			Version:       1,
			Actor:         buildActor(input.RequesterID, string(enums.ActorRoleOwner)),
			Data: payloads.RequestCreatedEvent{
				RequestID:   request.ID,
				RequesterID: request.RequesterID,
				Priority:    request.Priority,
				ItemCount:   len(request.Items),
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*RequestList, error) {
	if params.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	filters := params.Filters
	if params.ActorRole == enums.ActorRoleVendor {
		// Vendors only browse requests they could still claim.
		filters.Statuses = []enums.RequestStatus{enums.RequestStatusPending, enums.RequestStatusApproved}
		filters.RequesterID = nil
	}

	list, err := s.repo.List(ctx, params.Pagination, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list material requests")
	}
	return list, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*RequestDetail, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "material request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load material request")
	}
	return &RequestDetail{
		Request:     request,
		Items:       request.Items,
		Assignments: request.Assignments,
	}, nil
}

func (s *service) Approve(ctx context.Context, input DecisionInput) error {
	return s.decide(ctx, input, enums.RequestStatusApproved, enums.EventRequestApproved)
}

func (s *service) Reject(ctx context.Context, input DecisionInput) error {
	if input.Note == nil || strings.TrimSpace(*input.Note) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "rejection comments required")
	}
	return s.decide(ctx, input, enums.RequestStatusRejected, enums.EventRequestRejected)
}

func (s *service) decide(ctx context.Context, input DecisionInput, target enums.RequestStatus, eventType enums.OutboxEventType) error {
	if input.RequestID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := time.Now().UTC()

		affected, err := repo.UpdateStatusGuarded(ctx, input.RequestID, enums.RequestStatusPending, target, input.ActorUserID, now, input.Note)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update request status")
		}
		if affected == 0 {
			current, err := repo.FindByID(ctx, input.RequestID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, "material request not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load material request")
			}
			if current.Status == target {
				// Retried decision; nothing to re-emit.
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request decision only allowed while pending")
		}

		request, err := repo.FindByID(ctx, input.RequestID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload material request")
		}

		note := ""
		if input.Note != nil {
			note = strings.TrimSpace(*input.Note)
		}
		event := outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateMaterialRequest,
			AggregateID:   request.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorRole),
			Data: payloads.RequestDecisionEvent{
				RequestID:   request.ID,
				RequesterID: request.RequesterID,
				DecidedBy:   input.ActorUserID,
				Status:      target,
				Note:        note,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
}

func buildActor(userID uuid.UUID, role string) *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID: userID,
		Role:   role,
	}
}
