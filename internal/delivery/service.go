package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgdb "github.com/procureflow/procureflow-backend/pkg/db"
	"github.com/procureflow/procureflow-backend/pkg/db/models"
	"github.com/procureflow/procureflow-backend/pkg/enums"
	pkgerrors "github.com/procureflow/procureflow-backend/pkg/errors"
	"github.com/procureflow/procureflow-backend/pkg/outbox"
	"github.com/procureflow/procureflow-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines delivery tracking operations on accepted orders.
type Service interface {
	SubmitDetails(ctx context.Context, input DetailsInput) (*DetailsResult, error)
	UpdateStatus(ctx context.Context, input StatusInput) error
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds a delivery service with the required dependencies.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("delivery repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outbox}, nil
}

// trackableStatuses are the order states that accept delivery progress
// updates, derived from the statuses allowed to complete.
var trackableStatuses = enums.TransitionSources(enums.OrderStatusCompleted)

func (s *service) SubmitDetails(ctx context.Context, input DetailsInput) (*DetailsResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.VendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ExpectedDeliveryDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expected delivery date required")
	}
	if input.ExpectedDeliveryDate.Before(time.Now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expected delivery date must be in the future")
	}

	var result DetailsResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if order.VendorID != input.VendorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to vendor")
		}

		affected, err := repo.UpdateOrderGuarded(ctx, order.ID,
			enums.TransitionSources(enums.OrderStatusInProgress),
			map[string]any{
				"status":                 enums.OrderStatusInProgress,
				"expected_delivery_date": input.ExpectedDeliveryDate,
				"carrier":                input.Carrier,
				"tracking_number":        input.TrackingNumber,
				"delivery_note":          input.Note,
			})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record delivery details")
		}
		if affected == 0 {
			current, err := repo.FindOrder(ctx, order.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload purchase order")
			}
			if current.Status == enums.OrderStatusInProgress && current.Invoice != nil {
				// Retried submission; everything is already in place.
				result = DetailsResult{Order: current, Invoice: current.Invoice, Created: false}
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "delivery details require an accepted order")
		}

		if order.AgreedTotal == nil {
			return pkgerrors.New(pkgerrors.CodeInternal, "accepted order is missing its agreed total")
		}

		now := time.Now().UTC()
		invoice := &models.Invoice{
			OrderID:       order.ID,
			InvoiceNumber: fmt.Sprintf("INV-%d", now.UnixNano()),
			Amount:        *order.AgreedTotal,
			Currency:      order.Currency,
			IssuedAt:      now,
			DueDate:       input.InvoiceDueDate,
			Notes:         input.InvoiceNotes,
		}
		if err := repo.CreateInvoice(ctx, invoice); err != nil {
			if pkgdb.IsUniqueViolation(err, "uq_invoices_order") {
				existing, findErr := repo.FindInvoiceByOrder(ctx, order.ID)
				if findErr != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load existing invoice")
				}
				invoice = existing
			} else {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invoice")
			}
		}

		if err := s.appendDeliveryMessages(ctx, repo, order, invoice, input); err != nil {
			return err
		}

		actor := buildActor(input.VendorID)
		deliveryEvent := outbox.DomainEvent{
			EventType:     enums.EventDeliverySubmitted,
			AggregateType: enums.AggregatePurchaseOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actor,
			Data: payloads.DeliverySubmittedEvent{
				OrderID:              order.ID,
				RequesterID:          order.RequesterID,
				ExpectedDeliveryDate: &input.ExpectedDeliveryDate,
				Carrier:              derefString(input.Carrier),
				TrackingNumber:       derefString(input.TrackingNumber),
			},
		}
		if err := s.outbox.Emit(ctx, tx, deliveryEvent); err != nil {
			return err
		}

		invoiceEvent := outbox.DomainEvent{
			EventType:     enums.EventInvoiceIssued,
			AggregateType: enums.AggregatePurchaseOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actor,
			Data: payloads.InvoiceIssuedEvent{
				OrderID:       order.ID,
				InvoiceID:     invoice.ID,
				InvoiceNumber: invoice.InvoiceNumber,
				Amount:        invoice.Amount,
				Currency:      invoice.Currency,
				IssuedAt:      invoice.IssuedAt,
			},
		}
		if err := s.outbox.Emit(ctx, tx, invoiceEvent); err != nil {
			return err
		}

		order.Status = enums.OrderStatusInProgress
		result = DetailsResult{Order: order, Invoice: invoice, Created: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) UpdateStatus(ctx context.Context, input StatusInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.VendorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Status.IsValid() || input.Status == enums.DeliveryStatusPending {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown delivery status")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if order.VendorID != input.VendorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to vendor")
		}

		// An in_transit report only moves delivery_status; the order status
		// stays wherever the delivery left it.
		updates := map[string]any{"delivery_status": input.Status}
		targetStatus := order.Status
		var deliveredAt *time.Time
		switch input.Status {
		case enums.DeliveryStatusDelivered:
			now := time.Now().UTC()
			deliveredAt = &now
			targetStatus = enums.OrderStatusCompleted
			updates["status"] = targetStatus
			updates["delivered_at"] = now
		case enums.DeliveryStatusPartiallyDelivered:
			targetStatus = enums.OrderStatusPartiallyDelivered
			updates["status"] = targetStatus
		}

		affected, err := repo.UpdateOrderGuarded(ctx, order.ID, trackableStatuses, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery status")
		}
		if affected == 0 {
			current, err := repo.FindOrder(ctx, order.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload purchase order")
			}
			if current.DeliveryStatus == input.Status && current.Status == targetStatus {
				// Retried status report; nothing to re-emit.
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not in an active delivery state")
		}

		if err := repo.UpdateLineItemsDelivery(ctx, order.ID, input.Status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update line item delivery")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventDeliveryStatusChanged,
			AggregateType: enums.AggregatePurchaseOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.VendorID),
			Data: payloads.DeliveryStatusChangedEvent{
				OrderID:     order.ID,
				RequesterID: order.RequesterID,
				OrderStatus: targetStatus,
				Status:      input.Status,
				DeliveredAt: deliveredAt,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
}

// appendDeliveryMessages drops the structured delivery and invoice entries
// into the order thread. The thread is closed to chat at this point, so
// these are the only message kinds still being written.
func (s *service) appendDeliveryMessages(ctx context.Context, repo Repository, order *models.PurchaseOrder, invoice *models.Invoice, input DetailsInput) error {
	deliveryRaw, err := json.Marshal(DeliveryPayload{
		ExpectedDeliveryDate: input.ExpectedDeliveryDate,
		Carrier:              input.Carrier,
		TrackingNumber:       input.TrackingNumber,
		Note:                 input.Note,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode delivery payload")
	}
	deliveryMessage := &models.OrderMessage{
		OrderID:    order.ID,
		SenderID:   input.VendorID,
		SenderRole: enums.ActorRoleVendor,
		Type:       enums.MessageTypeDelivery,
		Payload:    deliveryRaw,
	}
	if err := repo.CreateMessage(ctx, deliveryMessage); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery message")
	}

	invoiceRaw, err := json.Marshal(InvoicePayload{
		InvoiceID:     invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		Amount:        invoice.Amount,
		Currency:      invoice.Currency,
		IssuedAt:      invoice.IssuedAt,
		DueDate:       invoice.DueDate,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode invoice payload")
	}
	invoiceMessage := &models.OrderMessage{
		OrderID:    order.ID,
		SenderID:   input.VendorID,
		SenderRole: enums.ActorRoleVendor,
		Type:       enums.MessageTypeInvoice,
		Payload:    invoiceRaw,
	}
	if err := repo.CreateMessage(ctx, invoiceMessage); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invoice message")
	}
	return nil
}

func loadOrder(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.PurchaseOrder, error) {
	order, err := repo.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase order")
	}
	return order, nil
}

func buildActor(vendorID uuid.UUID) *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID: vendorID,
		Role:   string(enums.ActorRoleVendor),
	}
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
