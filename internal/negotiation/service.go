package negotiation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

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

// Service defines the negotiation thread and quotation operations.
type Service interface {
	PostMessage(ctx context.Context, input PostMessageInput) (*models.OrderMessage, error)
	ListThread(ctx context.Context, orderID, actorUserID uuid.UUID, role enums.ActorRole) ([]models.OrderMessage, error)
	MarkThreadRead(ctx context.Context, orderID, actorUserID uuid.UUID, role enums.ActorRole) (int64, error)
	SubmitQuotation(ctx context.Context, input SubmitQuotationInput) (*models.OrderMessage, error)
	AcceptQuotation(ctx context.Context, input DecideQuotationInput) error
	RejectQuotation(ctx context.Context, input DecideQuotationInput) error
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds a negotiation service with the required dependencies.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("negotiation repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outbox}, nil
}

// negotiableStatuses are the order states that accept new quotations.
var negotiableStatuses = []enums.OrderStatus{
	enums.OrderStatusSent,
	enums.OrderStatusInNegotiation,
}

func (s *service) PostMessage(ctx context.Context, input PostMessageInput) (*models.OrderMessage, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.SenderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message body required")
	}

	var message *models.OrderMessage
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if err := requireParticipant(order, input.SenderID, input.SenderRole); err != nil {
			return err
		}
		if order.ChatClosed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "negotiation chat is closed")
		}

		if input.ReplyToID != nil {
			parent, err := repo.FindMessage(ctx, *input.ReplyToID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeValidation, "reply target not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reply target")
			}
			if parent.OrderID != order.ID {
				return pkgerrors.New(pkgerrors.CodeValidation, "reply target belongs to another thread")
			}
		}

		message = &models.OrderMessage{
			OrderID:    order.ID,
			SenderID:   input.SenderID,
			SenderRole: input.SenderRole,
			Type:       enums.MessageTypeText,
			Body:       &body,
			ReplyToID:  input.ReplyToID,
		}
		if err := repo.CreateMessage(ctx, message); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create message")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventMessagePosted,
			AggregateType: enums.AggregatePurchaseOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.SenderID, string(input.SenderRole)),
			Data: payloads.MessagePostedEvent{
				OrderID:    order.ID,
				MessageID:  message.ID,
				SenderID:   input.SenderID,
				SenderRole: input.SenderRole,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return message, nil
}

func (s *service) ListThread(ctx context.Context, orderID, actorUserID uuid.UUID, role enums.ActorRole) ([]models.OrderMessage, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := loadOrder(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	if role != enums.ActorRoleAdmin {
		if err := requireParticipant(order, actorUserID, role); err != nil {
			return nil, err
		}
	}
	messages, err := s.repo.ListMessages(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}
	return messages, nil
}

func (s *service) MarkThreadRead(ctx context.Context, orderID, actorUserID uuid.UUID, role enums.ActorRole) (int64, error) {
	if orderID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := loadOrder(ctx, s.repo, orderID)
	if err != nil {
		return 0, err
	}
	if err := requireParticipant(order, actorUserID, role); err != nil {
		return 0, err
	}

	affected, err := s.repo.MarkRead(ctx, orderID, role, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark messages read")
	}
	return affected, nil
}

func (s *service) SubmitQuotation(ctx context.Context, input SubmitQuotationInput) (*models.OrderMessage, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.VendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := validateQuotationPayload(&input.Payload); err != nil {
		return nil, err
	}

	var message *models.OrderMessage
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if order.VendorID != input.VendorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to vendor")
		}
		if order.ChatClosed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "negotiation chat is closed")
		}
		if !orderAcceptsQuotations(order.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not open for quotations")
		}
		if input.Payload.Currency == "" {
			input.Payload.Currency = order.Currency
		}

		raw, err := json.Marshal(input.Payload)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode quotation payload")
		}

		pending := enums.QuotationStatusPending
		message = &models.OrderMessage{
			OrderID:         order.ID,
			SenderID:        input.VendorID,
			SenderRole:      enums.ActorRoleVendor,
			Type:            enums.MessageTypeQuotation,
			Payload:         raw,
			QuotationStatus: &pending,
		}
		if err := repo.CreateMessage(ctx, message); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quotation message")
		}

		// First quotation moves the order out of its initial state.
		if order.Status == enums.OrderStatusSent {
			affected, err := repo.UpdateOrderGuarded(ctx, order.ID,
				enums.TransitionSources(enums.OrderStatusInNegotiation),
				map[string]any{"status": enums.OrderStatusInNegotiation})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance order to negotiation")
			}
			if affected == 0 {
				current, err := repo.FindOrder(ctx, order.ID)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload purchase order")
				}
				if current.Status != enums.OrderStatusInNegotiation {
					return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not open for quotations")
				}
			}
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventQuotationSubmitted,
			AggregateType: enums.AggregatePurchaseOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.VendorID, string(enums.ActorRoleVendor)),
			Data: payloads.QuotationSubmittedEvent{
				OrderID:     order.ID,
				MessageID:   message.ID,
				VendorID:    input.VendorID,
				RequesterID: order.RequesterID,
				Total:       input.Payload.Amount,
				Currency:    input.Payload.Currency,
				SubmittedAt: time.Now().UTC(),
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return message, nil
}

func (s *service) AcceptQuotation(ctx context.Context, input DecideQuotationInput) error {
	if err := validateDecisionInput(input); err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, message, err := loadQuotation(ctx, repo, input)
		if err != nil {
			return err
		}

		affected, err := repo.UpdateQuotationStatusGuarded(ctx, message.ID,
			enums.QuotationStatusPending, enums.QuotationStatusAccepted)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accept quotation")
		}
		if affected == 0 {
			current, err := repo.FindMessage(ctx, message.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload quotation")
			}
			// The order snapshot predates the guard; re-read it so a racing
			// retry sees the winner's committed acceptance.
			currentOrder, err := repo.FindOrder(ctx, order.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload purchase order")
			}
			if current.QuotationStatus != nil &&
				*current.QuotationStatus == enums.QuotationStatusAccepted &&
				currentOrder.AcceptedQuotationID != nil &&
				*currentOrder.AcceptedQuotationID == message.ID {
				// Retried accept of the winning quotation.
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "quotation already resolved")
		}

		var payload QuotationPayload
		if err := json.Unmarshal(message.Payload, &payload); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode quotation payload")
		}

		affected, err = repo.UpdateOrderGuarded(ctx, order.ID,
			enums.TransitionSources(enums.OrderStatusAccepted),
			map[string]any{
				"status":                enums.OrderStatusAccepted,
				"accepted_quotation_id": message.ID,
				"agreed_total":          payload.Amount,
				"currency":              payload.Currency,
				"chat_closed":           true,
			})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accept purchase order")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is no longer in negotiation")
		}

		if len(payload.Items) > 0 {
			prices := make([]LineItemPrice, 0, len(payload.Items))
			for _, item := range payload.Items {
				prices = append(prices, LineItemPrice{
					MaterialName: item.MaterialName,
					UnitPrice:    item.UnitPrice,
					LineTotal:    item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
				})
			}
			if err := repo.PriceLineItems(ctx, order.ID, prices); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "price order line items")
			}
		}

		body := fmt.Sprintf("Quotation accepted at %s %s.", payload.Amount.StringFixed(2), payload.Currency)
		if note := trimNote(input.Note); note != "" {
			body = body + " " + note
		}
		system := &models.OrderMessage{
			OrderID:    order.ID,
			SenderID:   input.ActorUserID,
			SenderRole: input.ActorRole,
			Type:       enums.MessageTypeSystem,
			Body:       &body,
		}
		if err := repo.CreateMessage(ctx, system); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create system message")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventQuotationAccepted,
			AggregateType: enums.AggregatePurchaseOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, string(input.ActorRole)),
			Data: payloads.QuotationDecisionEvent{
				OrderID:   order.ID,
				MessageID: message.ID,
				VendorID:  order.VendorID,
				DecidedBy: input.ActorUserID,
				Status:    enums.QuotationStatusAccepted,
				Note:      trimNote(input.Note),
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
}

func (s *service) RejectQuotation(ctx context.Context, input DecideQuotationInput) error {
	if err := validateDecisionInput(input); err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, message, err := loadQuotation(ctx, repo, input)
		if err != nil {
			return err
		}

		affected, err := repo.UpdateQuotationStatusGuarded(ctx, message.ID,
			enums.QuotationStatusPending, enums.QuotationStatusRejected)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject quotation")
		}
		if affected == 0 {
			current, err := repo.FindMessage(ctx, message.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload quotation")
			}
			if current.QuotationStatus != nil && *current.QuotationStatus == enums.QuotationStatusRejected {
				// Retried reject; nothing to re-emit.
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "quotation already resolved")
		}

		// Rejection leaves the order negotiable and the thread open.
		event := outbox.DomainEvent{
			EventType:     enums.EventQuotationRejected,
			AggregateType: enums.AggregatePurchaseOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, string(input.ActorRole)),
			Data: payloads.QuotationDecisionEvent{
				OrderID:   order.ID,
				MessageID: message.ID,
				VendorID:  order.VendorID,
				DecidedBy: input.ActorUserID,
				Status:    enums.QuotationStatusRejected,
				Note:      trimNote(input.Note),
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
}

// loadQuotation resolves an order and one of its quotation messages, checking
// that the actor owns the order.
func loadQuotation(ctx context.Context, repo Repository, input DecideQuotationInput) (*models.PurchaseOrder, *models.OrderMessage, error) {
	order, err := loadOrder(ctx, repo, input.OrderID)
	if err != nil {
		return nil, nil, err
	}
	if order.RequesterID != input.ActorUserID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "quotation decisions are reserved to the order owner")
	}

	message, err := repo.FindMessage(ctx, input.MessageID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quotation")
	}
	if message.OrderID != order.ID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
	}
	if message.Type != enums.MessageTypeQuotation {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "message is not a quotation")
	}
	return order, message, nil
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

// requireParticipant restricts thread writes to the order's two parties.
func requireParticipant(order *models.PurchaseOrder, actorUserID uuid.UUID, role enums.ActorRole) error {
	if role == enums.ActorRoleVendor {
		if order.VendorID != actorUserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to vendor")
		}
		return nil
	}
	if order.RequesterID != actorUserID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to requester")
	}
	return nil
}

func orderAcceptsQuotations(status enums.OrderStatus) bool {
	for _, candidate := range negotiableStatuses {
		if candidate == status {
			return true
		}
	}
	return false
}

func validateQuotationPayload(payload *QuotationPayload) error {
	if !payload.Amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "quotation amount must be positive")
	}
	if payload.Currency != "" && !payload.Currency.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown currency")
	}
	if payload.ValidUntil != nil && payload.ValidUntil.Before(time.Now()) {
		return pkgerrors.New(pkgerrors.CodeValidation, "valid_until must be in the future")
	}
	for _, item := range payload.Items {
		if strings.TrimSpace(item.MaterialName) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "quotation item name required")
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quotation item quantity must be positive")
		}
		if item.UnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "quotation item price cannot be negative")
		}
	}
	return nil
}

func validateDecisionInput(input DecideQuotationInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.MessageID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "message id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return nil
}

func trimNote(note *string) string {
	if note == nil {
		return ""
	}
	return strings.TrimSpace(*note)
}

func buildActor(userID uuid.UUID, role string) *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID: userID,
		Role:   role,
	}
}
