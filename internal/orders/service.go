package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgdb "github.com/procureflow/procureflow-backend/pkg/db"
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

// ListParams configures the role-filtered order list.
type ListParams struct {
	ActorUserID uuid.UUID
	ActorRole   enums.ActorRole
	Pagination  pagination.Params
	Statuses    []enums.OrderStatus
}

// Service defines purchase order lifecycle operations.
type Service interface {
	AcceptRequest(ctx context.Context, input AcceptInput) (*AcceptResult, error)
	List(ctx context.Context, params ListParams) (*OrderList, error)
	Get(ctx context.Context, orderID, actorUserID uuid.UUID, role enums.ActorRole) (*models.PurchaseOrder, error)
	Cancel(ctx context.Context, input CancelInput) error
	DeliveryOverview(ctx context.Context, actorUserID uuid.UUID, role enums.ActorRole) (*DeliveryOverview, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds a purchase order service with the required dependencies.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outbox}, nil
}

// activeDeliveryStatuses are the order states counted as in-flight deliveries.
var activeDeliveryStatuses = []enums.OrderStatus{
	enums.OrderStatusAccepted,
	enums.OrderStatusInProgress,
	enums.OrderStatusPartiallyDelivered,
}

func (s *service) AcceptRequest(ctx context.Context, input AcceptInput) (*AcceptResult, error) {
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.VendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var result AcceptResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		request, err := repo.FindRequest(ctx, input.RequestID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "material request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load material request")
		}
		if !request.Status.AcceptsVendors() {
			return pkgerrors.New(pkgerrors.CodeForbidden, "request is not open to vendors")
		}

		assignments, err := repo.FindAssignmentsByRequest(ctx, input.RequestID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor assignments")
		}
		for _, assignment := range assignments {
			if assignment.VendorID == input.VendorID {
				// Same vendor retrying: hand back the existing order.
				order, err := repo.FindOrderByRequestAndVendor(ctx, input.RequestID, input.VendorID)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load existing order")
				}
				result = AcceptResult{Order: order, Created: false}
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeConflict, "request already claimed by another vendor")
		}

		assignment := &models.VendorAssignment{
			RequestID:  input.RequestID,
			VendorID:   input.VendorID,
			AssignedBy: input.VendorID,
		}
		if err := repo.CreateAssignment(ctx, assignment); err != nil {
			if pkgdb.IsUniqueViolation(err, "uq_vendor_assignments_request") {
				// Lost the assignment race; the committed claim decides the outcome.
				claimed, readErr := repo.FindAssignmentsByRequest(ctx, input.RequestID)
				if readErr != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, readErr, "load vendor assignments")
				}
				for _, winner := range claimed {
					if winner.VendorID == input.VendorID {
						order, findErr := repo.FindOrderByRequestAndVendor(ctx, input.RequestID, input.VendorID)
						if findErr != nil {
							return pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load existing order")
						}
						result = AcceptResult{Order: order, Created: false}
						return nil
					}
				}
				return pkgerrors.New(pkgerrors.CodeConflict, "request already claimed by another vendor")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vendor assignment")
		}

		order := &models.PurchaseOrder{
			OrderNumber:       fmt.Sprintf("PO-%d", time.Now().UnixNano()),
			MaterialRequestID: request.ID,
			VendorID:          input.VendorID,
			RequesterID:       request.RequesterID,
			Status:            enums.OrderStatusSent,
			Currency:          enums.CurrencyUSD,
			DeliveryStatus:    enums.DeliveryStatusPending,
		}
		for _, item := range request.Items {
			order.Items = append(order.Items, models.OrderLineItem{
				RequestItemID: ptrUUID(item.ID),
				MaterialName:  item.MaterialName,
				Specification: item.Specification,
				Quantity:      item.Quantity,
				Unit:          item.Unit,
			})
		}

		created, err := repo.CreateOrder(ctx, order)
		if err != nil {
			if pkgdb.IsUniqueViolation(err, "uq_purchase_orders_request_vendor") {
				existing, findErr := repo.FindOrderByRequestAndVendor(ctx, input.RequestID, input.VendorID)
				if findErr != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load existing order")
				}
				result = AcceptResult{Order: existing, Created: false}
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create purchase order")
		}

		actor := buildActor(input.VendorID, input.ActorRole)
		assignedEvent := outbox.DomainEvent{
			EventType:     enums.EventVendorAssigned,
			AggregateType: enums.AggregateMaterialRequest,
			AggregateID:   request.ID,
			Version:       1,
			Actor:         actor,
			Data: payloads.VendorAssignedEvent{
				RequestID: request.ID,
				VendorID:  input.VendorID,
			},
		}
		if err := s.outbox.Emit(ctx, tx, assignedEvent); err != nil {
			return err
		}

		createdEvent := outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregatePurchaseOrder,
			AggregateID:   created.ID,
			Version:       1,
			Actor:         actor,
			Data: payloads.OrderCreatedEvent{
				OrderID:           created.ID,
				OrderNumber:       created.OrderNumber,
				MaterialRequestID: created.MaterialRequestID,
				VendorID:          created.VendorID,
				RequesterID:       created.RequesterID,
			},
		}
		if err := s.outbox.Emit(ctx, tx, createdEvent); err != nil {
			return err
		}

		result = AcceptResult{Order: created, Created: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*OrderList, error) {
	if params.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	filters := OrderFilters{Statuses: params.Statuses}
	switch params.ActorRole {
	case enums.ActorRoleVendor:
		filters.VendorID = &params.ActorUserID
	case enums.ActorRoleAdmin:
		// Admins see everything.
	default:
		filters.RequesterID = &params.ActorUserID
	}

	list, err := s.repo.List(ctx, params.Pagination, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchase orders")
	}
	return list, nil
}

func (s *service) Get(ctx context.Context, orderID, actorUserID uuid.UUID, role enums.ActorRole) (*models.PurchaseOrder, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase order")
	}
	if err := authorizeOrderAccess(order, actorUserID, role); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Cancel(ctx context.Context, input CancelInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase order")
		}
		if input.ActorRole != enums.ActorRoleAdmin && order.RequesterID != input.ActorUserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to requester")
		}

		now := time.Now().UTC()
		var reason *string
		if input.Reason != nil {
			trimmed := strings.TrimSpace(*input.Reason)
			if trimmed != "" {
				reason = &trimmed
			}
		}

		affected, err := repo.UpdateOrderGuarded(ctx, order.ID, enums.TransitionSources(enums.OrderStatusCancelled), map[string]any{
			"status":        enums.OrderStatusCancelled,
			"cancelled_at":  now,
			"cancel_reason": reason,
			"chat_closed":   true,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel purchase order")
		}
		if affected == 0 {
			current, err := repo.FindOrder(ctx, order.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload purchase order")
			}
			if current.Status == enums.OrderStatusCancelled {
				// Retried cancel; nothing to re-emit.
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "completed orders cannot be cancelled")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregatePurchaseOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, string(input.ActorRole)),
			Data: payloads.OrderCancelledEvent{
				OrderID:     order.ID,
				VendorID:    order.VendorID,
				CancelledAt: now,
				Reason:      derefString(reason),
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
}

func (s *service) DeliveryOverview(ctx context.Context, actorUserID uuid.UUID, role enums.ActorRole) (*DeliveryOverview, error) {
	if actorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	scope := OrderFilters{}
	if role != enums.ActorRoleAdmin {
		scope.RequesterID = &actorUserID
	}

	active := scope
	active.Statuses = activeDeliveryStatuses
	activeRows, err := s.repo.ListByStatuses(ctx, active)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active deliveries")
	}

	delivered := scope
	delivered.Statuses = []enums.OrderStatus{enums.OrderStatusCompleted}
	deliveredRows, err := s.repo.ListByStatuses(ctx, delivered)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivered orders")
	}

	total, err := s.repo.CountOrders(ctx, scope)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}

	return &DeliveryOverview{
		ActiveDeliveries: activeRows,
		Delivered:        deliveredRows,
		TotalCount:       int(total),
	}, nil
}

func authorizeOrderAccess(order *models.PurchaseOrder, actorUserID uuid.UUID, role enums.ActorRole) error {
	switch role {
	case enums.ActorRoleAdmin:
		return nil
	case enums.ActorRoleVendor:
		if order.VendorID != actorUserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to vendor")
		}
	default:
		if order.RequesterID != actorUserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to requester")
		}
	}
	return nil
}

func buildActor(userID uuid.UUID, role string) *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID: userID,
		Role:   role,
	}
}

func ptrUUID(id uuid.UUID) *uuid.UUID {
	return &id
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
