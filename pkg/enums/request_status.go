package enums

import "fmt"

// RequestStatus tracks the lifecycle of a material request.
type RequestStatus string

const (
	RequestStatusPending            RequestStatus = "pending"
	RequestStatusApproved           RequestStatus = "approved"
	RequestStatusRejected           RequestStatus = "rejected"
	RequestStatusPartiallyFulfilled RequestStatus = "partially_fulfilled"
	RequestStatusFulfilled          RequestStatus = "fulfilled"
)

var validRequestStatuses = []RequestStatus{
	RequestStatusPending,
	RequestStatusApproved,
	RequestStatusRejected,
	RequestStatusPartiallyFulfilled,
	RequestStatusFulfilled,
}

// String implements fmt.Stringer.
func (r RequestStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RequestStatus.
func (r RequestStatus) IsValid() bool {
	for _, candidate := range validRequestStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// AcceptsVendors reports whether vendors may still self-assign to the request.
func (r RequestStatus) AcceptsVendors() bool {
	return r == RequestStatusPending || r == RequestStatusApproved
}

// ParseRequestStatus converts raw input into a RequestStatus.
func ParseRequestStatus(value string) (RequestStatus, error) {
	for _, candidate := range validRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid request status %q", value)
}
