package controllers

import (
	"net/http"
	"time"

	"github.com/procureflow/procureflow-backend/api/responses"
	"github.com/procureflow/procureflow-backend/api/validators"
	"github.com/procureflow/procureflow-backend/internal/delivery"
	"github.com/procureflow/procureflow-backend/pkg/enums"
	pkgerrors "github.com/procureflow/procureflow-backend/pkg/errors"
	"github.com/procureflow/procureflow-backend/pkg/logger"
)

type deliveryDetailsPayload struct {
	ExpectedDeliveryDate time.Time  `json:"expected_delivery_date" validate:"required"`
	Carrier              *string    `json:"carrier"`
	TrackingNumber       *string    `json:"tracking_number"`
	Note                 *string    `json:"note"`
	InvoiceDueDate       *time.Time `json:"invoice_due_date"`
	InvoiceNotes         *string    `json:"invoice_notes"`
}

type deliveryStatusPayload struct {
	Status string  `json:"status" validate:"required"`
	Note   *string `json:"note"`
}

// SubmitDeliveryDetails registers the vendor's delivery plan and issues the
// order invoice.
func SubmitDeliveryDetails(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
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

		var payload deliveryDetailsPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SubmitDetails(r.Context(), delivery.DetailsInput{
			OrderID:              orderID,
			VendorID:             actorID,
			ExpectedDeliveryDate: payload.ExpectedDeliveryDate,
			Carrier:              payload.Carrier,
			TrackingNumber:       payload.TrackingNumber,
			Note:                 payload.Note,
			InvoiceDueDate:       payload.InvoiceDueDate,
			InvoiceNotes:         payload.InvoiceNotes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if result.Created {
			responses.WriteSuccessStatus(w, http.StatusCreated, result)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// UpdateDeliveryStatus moves an in-flight delivery through its states.
func UpdateDeliveryStatus(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
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

		var payload deliveryStatusPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseDeliveryStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown delivery status"))
			return
		}

		err = svc.UpdateStatus(r.Context(), delivery.StatusInput{
			OrderID:  orderID,
			VendorID: actorID,
			Status:   status,
			Note:     payload.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"delivery_status": string(status)})
	}
}
