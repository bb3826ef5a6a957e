package enums

import "fmt"

// OrderStatus tracks the lifecycle of a purchase order from creation to completion.
type OrderStatus string

const (
	OrderStatusSent               OrderStatus = "sent"
	OrderStatusInNegotiation      OrderStatus = "in_negotiation"
	OrderStatusAccepted           OrderStatus = "accepted"
	OrderStatusInProgress         OrderStatus = "in_progress"
	OrderStatusPartiallyDelivered OrderStatus = "partially_delivered"
	OrderStatusCompleted          OrderStatus = "completed"
	OrderStatusCancelled          OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusSent,
	OrderStatusInNegotiation,
	OrderStatusAccepted,
	OrderStatusInProgress,
	OrderStatusPartiallyDelivered,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from the status.
func (o OrderStatus) IsTerminal() bool {
	return o == OrderStatusCompleted || o == OrderStatusCancelled
}

// CanTransitionTo reports whether the status graph permits moving to next.
func (o OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if next == OrderStatusCancelled {
		return !o.IsTerminal()
	}
	switch o {
	case OrderStatusSent:
		return next == OrderStatusInNegotiation
	case OrderStatusInNegotiation:
		return next == OrderStatusAccepted
	case OrderStatusAccepted:
		return next == OrderStatusInProgress
	case OrderStatusInProgress:
		return next == OrderStatusCompleted || next == OrderStatusPartiallyDelivered
	case OrderStatusPartiallyDelivered:
		return next == OrderStatusCompleted || next == OrderStatusPartiallyDelivered
	default:
		return false
	}
}

// TransitionSources lists every status the graph allows to move to next.
func TransitionSources(next OrderStatus) []OrderStatus {
	var sources []OrderStatus
	for _, candidate := range validOrderStatuses {
		if candidate.CanTransitionTo(next) {
			sources = append(sources, candidate)
		}
	}
	return sources
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
