package requests

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow-backend/pkg/db/models"
	"github.com/procureflow/procureflow-backend/pkg/enums"
	pkgerrors "github.com/procureflow/procureflow-backend/pkg/errors"
	"github.com/procureflow/procureflow-backend/pkg/outbox"
	"github.com/procureflow/procureflow-backend/pkg/pagination"
)

type stubRequestsRepo struct {
	request    *models.MaterialRequest
	created    *models.MaterialRequest
	guardRows  int64
	guardCalls int
	lastFrom   enums.RequestStatus
	lastTo     enums.RequestStatus
	listCalls  []ListFilters
}

func (s *stubRequestsRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubRequestsRepo) Create(ctx context.Context, request *models.MaterialRequest) (*models.MaterialRequest, error) {
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	s.created = request
	return request, nil
}

func (s *stubRequestsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.MaterialRequest, error) {
	if s.request == nil || s.request.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.request, nil
}

func (s *stubRequestsRepo) List(ctx context.Context, params pagination.Params, filters ListFilters) (*RequestList, error) {
	s.listCalls = append(s.listCalls, filters)
	return &RequestList{}, nil
}

func (s *stubRequestsRepo) UpdateStatusGuarded(ctx context.Context, id uuid.UUID, from, to enums.RequestStatus, decidedBy uuid.UUID, decidedAt time.Time, note *string) (int64, error) {
	s.guardCalls++
	s.lastFrom = from
	s.lastTo = to
	if s.guardRows > 0 && s.request != nil {
		s.request.Status = to
		s.request.DecidedBy = &decidedBy
		s.request.DecidedAt = &decidedAt
		s.request.DecisionNote = note
	}
	return s.guardRows, nil
}

type stubOutboxPublisher struct {
	events []outbox.DomainEvent
	err    error
}

func (s *stubOutboxPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func validCreateInput() CreateInput {
	needed := time.Now().Add(72 * time.Hour)
	return CreateInput{
		RequesterID: uuid.New(),
		Title:       "Steel for north wing",
		Priority:    enums.RequestPriorityHigh,
		NeededBy:    &needed,
		Items: []ItemInput{
			{MaterialName: "Rebar 12mm", Quantity: 500, Unit: "pcs"},
			{MaterialName: "Cement", Quantity: 40, Unit: "bags"},
		},
	}
}

func TestCreateEmitsRequestCreated(t *testing.T) {
	repo := &stubRequestsRepo{}
	pub := &stubOutboxPublisher{}
	svc, err := NewService(repo, stubTxRunner{}, pub)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	request, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if request.Status != enums.RequestStatusPending {
		t.Fatalf("expected pending got %s", request.Status)
	}
	if len(request.Items) != 2 {
		t.Fatalf("expected 2 items got %d", len(request.Items))
	}
	if len(pub.events) != 1 || pub.events[0].EventType != enums.EventRequestCreated {
		t.Fatalf("expected request_created event got %+v", pub.events)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := NewService(&stubRequestsRepo{}, stubTxRunner{}, &stubOutboxPublisher{})

	tests := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"empty items", func(in *CreateInput) { in.Items = nil }},
		{"zero quantity", func(in *CreateInput) { in.Items[0].Quantity = 0 }},
		{"negative quantity", func(in *CreateInput) { in.Items[1].Quantity = -3 }},
		{"blank title", func(in *CreateInput) { in.Title = "  " }},
		{"needed_by in past", func(in *CreateInput) {
			past := time.Now().Add(-time.Hour)
			in.NeededBy = &past
		}},
		{"bad priority", func(in *CreateInput) { in.Priority = "whenever" }},
	}
	for _, tt := range tests {
		input := validCreateInput()
		tt.mutate(&input)
		_, err := svc.Create(context.Background(), input)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error got %v", tt.name, err)
		}
	}
}

func TestApprovePendingRequest(t *testing.T) {
	requestID := uuid.New()
	repo := &stubRequestsRepo{
		request: &models.MaterialRequest{
			ID:          requestID,
			RequesterID: uuid.New(),
			Status:      enums.RequestStatusPending,
		},
		guardRows: 1,
	}
	pub := &stubOutboxPublisher{}
	svc, _ := NewService(repo, stubTxRunner{}, pub)

	err := svc.Approve(context.Background(), DecisionInput{
		RequestID:   requestID,
		ActorUserID: uuid.New(),
		ActorRole:   "owner",
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if repo.lastFrom != enums.RequestStatusPending || repo.lastTo != enums.RequestStatusApproved {
		t.Fatalf("unexpected guard %s -> %s", repo.lastFrom, repo.lastTo)
	}
	if len(pub.events) != 1 || pub.events[0].EventType != enums.EventRequestApproved {
		t.Fatalf("expected request_approved event got %+v", pub.events)
	}
}

func TestApproveRetryIsIdempotent(t *testing.T) {
	requestID := uuid.New()
	repo := &stubRequestsRepo{
		request: &models.MaterialRequest{
			ID:     requestID,
			Status: enums.RequestStatusApproved,
		},
		guardRows: 0,
	}
	pub := &stubOutboxPublisher{}
	svc, _ := NewService(repo, stubTxRunner{}, pub)

	err := svc.Approve(context.Background(), DecisionInput{
		RequestID:   requestID,
		ActorUserID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("expected idempotent success got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("retry must not emit again, got %d events", len(pub.events))
	}
}

func TestApproveRejectedRequestConflicts(t *testing.T) {
	requestID := uuid.New()
	repo := &stubRequestsRepo{
		request: &models.MaterialRequest{
			ID:     requestID,
			Status: enums.RequestStatusRejected,
		},
	}
	svc, _ := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{})

	err := svc.Approve(context.Background(), DecisionInput{
		RequestID:   requestID,
		ActorUserID: uuid.New(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}

func TestRejectRequiresComments(t *testing.T) {
	svc, _ := NewService(&stubRequestsRepo{}, stubTxRunner{}, &stubOutboxPublisher{})
	err := svc.Reject(context.Background(), DecisionInput{
		RequestID:   uuid.New(),
		ActorUserID: uuid.New(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestListPinsVendorsToOpenStatuses(t *testing.T) {
	repo := &stubRequestsRepo{}
	svc, _ := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{})

	requester := uuid.New()
	_, err := svc.List(context.Background(), ListParams{
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleVendor,
		Filters: ListFilters{
			Statuses:    []enums.RequestStatus{enums.RequestStatusRejected},
			RequesterID: &requester,
		},
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(repo.listCalls) != 1 {
		t.Fatalf("expected one list call got %d", len(repo.listCalls))
	}
	got := repo.listCalls[0]
	if len(got.Statuses) != 2 || got.Statuses[0] != enums.RequestStatusPending || got.Statuses[1] != enums.RequestStatusApproved {
		t.Fatalf("vendor statuses not pinned: %+v", got.Statuses)
	}
	if got.RequesterID != nil {
		t.Fatal("vendor list must not filter by requester")
	}
}

func TestGetMissingRequest(t *testing.T) {
	svc, _ := NewService(&stubRequestsRepo{}, stubTxRunner{}, &stubOutboxPublisher{})
	_, err := svc.Get(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found got %v", err)
	}
}
