package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestMetadataFor(t *testing.T) {
	cases := []struct {
		name       string
		code       Code
		wantStatus int
		retryable  bool
	}{
		{"validation", CodeValidation, http.StatusBadRequest, false},
		{"unauthorized", CodeUnauthorized, http.StatusUnauthorized, false},
		{"forbidden", CodeForbidden, http.StatusForbidden, false},
		{"not found", CodeNotFound, http.StatusNotFound, false},
		{"conflict", CodeConflict, http.StatusConflict, false},
		{"state conflict", CodeStateConflict, http.StatusUnprocessableEntity, false},
		{"idempotency", CodeIdempotency, http.StatusConflict, false},
		{"internal", CodeInternal, http.StatusInternalServerError, true},
		{"dependency", CodeDependency, http.StatusServiceUnavailable, true},
		{"unknown falls back to internal", Code("NO_SUCH_CODE"), http.StatusInternalServerError, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			meta := MetadataFor(tc.code)
			if meta.HTTPStatus != tc.wantStatus {
				t.Fatalf("status = %d, want %d", meta.HTTPStatus, tc.wantStatus)
			}
			if meta.Retryable != tc.retryable {
				t.Fatalf("retryable = %v, want %v", meta.Retryable, tc.retryable)
			}
		})
	}
}

func TestWrapAndAs(t *testing.T) {
	cause := stdErrors.New("driver: broken pipe")
	err := Wrap(CodeDependency, cause, "publishing event")

	typed := As(err)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeDependency {
		t.Fatalf("code = %s", typed.Code())
	}
	if !stdErrors.Is(err, cause) {
		t.Fatal("cause not reachable through Unwrap")
	}
}

func TestAsReturnsNilForUntyped(t *testing.T) {
	if As(stdErrors.New("plain")) != nil {
		t.Fatal("expected nil for untyped error")
	}
	if As(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "bad body").WithDetails(map[string]string{"quantity": "must be positive"})
	details, ok := err.Details().(map[string]string)
	if !ok {
		t.Fatalf("details type = %T", err.Details())
	}
	if details["quantity"] != "must be positive" {
		t.Fatalf("details = %v", details)
	}
}

func TestDumpExtractsTypedFields(t *testing.T) {
	cause := stdErrors.New("connection reset")
	dump := Dump(Wrap(CodeDependency, cause, "redis ping"))
	if dump.Code != CodeDependency {
		t.Fatalf("code = %s", dump.Code)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected cause in chain, got %v", dump.Chain)
	}
}
