package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/procureflow/procureflow-backend/api/responses"
	"github.com/procureflow/procureflow-backend/api/validators"
	"github.com/procureflow/procureflow-backend/internal/negotiation"
	"github.com/procureflow/procureflow-backend/pkg/enums"
	pkgerrors "github.com/procureflow/procureflow-backend/pkg/errors"
	"github.com/procureflow/procureflow-backend/pkg/logger"
)

type postMessagePayload struct {
	Body      string     `json:"body" validate:"required"`
	ReplyToID *uuid.UUID `json:"reply_to_id"`
}

type quotationItemPayload struct {
	MaterialName string          `json:"material_name" validate:"required"`
	Quantity     int             `json:"quantity" validate:"required,gt=0"`
	Unit         string          `json:"unit" validate:"required"`
	UnitPrice    decimal.Decimal `json:"unit_price" validate:"required"`
}

type submitQuotationPayload struct {
	Amount        decimal.Decimal        `json:"amount" validate:"required"`
	Currency      string                 `json:"currency"`
	ValidUntil    *time.Time             `json:"valid_until"`
	Notes         *string                `json:"notes"`
	Items         []quotationItemPayload `json:"items" validate:"dive"`
	PaymentTerms  *string                `json:"payment_terms"`
	DeliveryTerms *string                `json:"delivery_terms"`
}

type quotationDecisionPayload struct {
	Note *string `json:"note"`
}

// PostOrderMessage appends a chat message to an order thread.
func PostOrderMessage(svc negotiation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "negotiation service unavailable"))
			return
		}

		actorID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload postMessagePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		message, err := svc.PostMessage(r.Context(), negotiation.PostMessageInput{
			OrderID:    orderID,
			SenderID:   actorID,
			SenderRole: role,
			Body:       validators.SanitizeString(payload.Body, 4000),
			ReplyToID:  payload.ReplyToID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, message)
	}
}

// ListOrderMessages returns the full thread for an order, oldest first.
func ListOrderMessages(svc negotiation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "negotiation service unavailable"))
			return
		}

		actorID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		messages, err := svc.ListThread(r.Context(), orderID, actorID, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, messages)
	}
}

// MarkThreadRead stamps the caller's read receipt across the thread.
func MarkThreadRead(svc negotiation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "negotiation service unavailable"))
			return
		}

		actorID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.MarkThreadRead(r.Context(), orderID, actorID, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"marked_read": updated})
	}
}

// SubmitQuotation posts a structured vendor quotation into the thread.
func SubmitQuotation(svc negotiation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "negotiation service unavailable"))
			return
		}

		actorID, _, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload submitQuotationPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]negotiation.QuotationItem, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, negotiation.QuotationItem{
				MaterialName: validators.SanitizeString(item.MaterialName, 200),
				Quantity:     item.Quantity,
				Unit:         item.Unit,
				UnitPrice:    item.UnitPrice,
			})
		}

		message, err := svc.SubmitQuotation(r.Context(), negotiation.SubmitQuotationInput{
			OrderID:  orderID,
			VendorID: actorID,
			Payload: negotiation.QuotationPayload{
				Amount:        payload.Amount,
				Currency:      enums.Currency(payload.Currency),
				ValidUntil:    payload.ValidUntil,
				Notes:         payload.Notes,
				Items:         items,
				PaymentTerms:  payload.PaymentTerms,
				DeliveryTerms: payload.DeliveryTerms,
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, message)
	}
}

// AcceptQuotation locks in a pending quotation and closes the negotiation.
func AcceptQuotation(svc negotiation.Service, logg *logger.Logger) http.HandlerFunc {
	return quotationDecision(svc, logg, false)
}

// RejectQuotation declines a pending quotation, leaving the thread open.
func RejectQuotation(svc negotiation.Service, logg *logger.Logger) http.HandlerFunc {
	return quotationDecision(svc, logg, true)
}

func quotationDecision(svc negotiation.Service, logg *logger.Logger, reject bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "negotiation service unavailable"))
			return
		}

		actorID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		messageID, err := pathUUID(r, "messageId", "message id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload quotationDecisionPayload
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		input := negotiation.DecideQuotationInput{
			OrderID:     orderID,
			MessageID:   messageID,
			ActorUserID: actorID,
			ActorRole:   role,
			Note:        payload.Note,
		}
		if reject {
			err = svc.RejectQuotation(r.Context(), input)
		} else {
			err = svc.AcceptQuotation(r.Context(), input)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := "accepted"
		if reject {
			status = "rejected"
		}
		responses.WriteSuccess(w, map[string]string{"status": status})
	}
}
