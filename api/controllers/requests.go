package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/procureflow/procureflow-backend/api/responses"
	"github.com/procureflow/procureflow-backend/api/validators"
	"github.com/procureflow/procureflow-backend/internal/requests"
	"github.com/procureflow/procureflow-backend/pkg/enums"
	pkgerrors "github.com/procureflow/procureflow-backend/pkg/errors"
	"github.com/procureflow/procureflow-backend/pkg/logger"
	"github.com/procureflow/procureflow-backend/pkg/pagination"
)

type requestItemPayload struct {
	MaterialName  string  `json:"material_name" validate:"required"`
	Specification *string `json:"specification"`
	Quantity      int     `json:"quantity" validate:"required,min=1"`
	Unit          string  `json:"unit" validate:"required"`
	Notes         *string `json:"notes"`
}

type createRequestPayload struct {
	Title       string               `json:"title" validate:"required"`
	Description *string              `json:"description"`
	Priority    string               `json:"priority"`
	NeededBy    *time.Time           `json:"needed_by"`
	Items       []requestItemPayload `json:"items" validate:"required,min=1,dive"`
}

type decisionPayload struct {
	Note *string `json:"note"`
}

// CreateMaterialRequest files a new material request for the caller.
func CreateMaterialRequest(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		actorID, _, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createRequestPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := requests.CreateInput{
			RequesterID: actorID,
			Title:       validators.SanitizeString(payload.Title, 200),
			Description: payload.Description,
			NeededBy:    payload.NeededBy,
		}
		if raw := strings.TrimSpace(payload.Priority); raw != "" {
			priority, err := enums.ParseRequestPriority(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown priority"))
				return
			}
			input.Priority = priority
		}
		for _, item := range payload.Items {
			input.Items = append(input.Items, requests.ItemInput{
				MaterialName:  validators.SanitizeString(item.MaterialName, 200),
				Specification: item.Specification,
				Quantity:      item.Quantity,
				Unit:          strings.TrimSpace(item.Unit),
				Notes:         item.Notes,
			})
		}

		created, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// ListMaterialRequests returns a role-scoped page of requests.
func ListMaterialRequests(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		actorID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := requests.ListParams{
			ActorUserID: actorID,
			ActorRole:   role,
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		}

		for _, raw := range splitQueryList(r.URL.Query().Get("status")) {
			status, err := enums.ParseRequestStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown request status"))
				return
			}
			params.Filters.Statuses = append(params.Filters.Statuses, status)
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("priority")); raw != "" {
			priority, err := enums.ParseRequestPriority(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown priority"))
				return
			}
			params.Filters.Priority = &priority
		}

		list, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// GetMaterialRequest returns one request with its items and assignments.
func GetMaterialRequest(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		requestID, err := pathUUID(r, "requestId", "request id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(r.Context(), requestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// ApproveMaterialRequest moves a pending request into the vendor pool.
func ApproveMaterialRequest(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return requestDecision(svc, logg, false)
}

// RejectMaterialRequest closes a pending request with a mandatory note.
func RejectMaterialRequest(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return requestDecision(svc, logg, true)
}

func requestDecision(svc requests.Service, logg *logger.Logger, reject bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		actorID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := pathUUID(r, "requestId", "request id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload decisionPayload
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		input := requests.DecisionInput{
			RequestID:   requestID,
			ActorUserID: actorID,
			ActorRole:   string(role),
			Note:        payload.Note,
		}
		if reject {
			err = svc.Reject(r.Context(), input)
		} else {
			err = svc.Approve(r.Context(), input)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

func splitQueryList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
