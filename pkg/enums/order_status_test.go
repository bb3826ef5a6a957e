package enums

import "testing"

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusSent, OrderStatusInNegotiation, true},
		{OrderStatusInNegotiation, OrderStatusAccepted, true},
		{OrderStatusAccepted, OrderStatusInProgress, true},
		{OrderStatusInProgress, OrderStatusCompleted, true},
		{OrderStatusInProgress, OrderStatusPartiallyDelivered, true},
		{OrderStatusPartiallyDelivered, OrderStatusCompleted, true},
		{OrderStatusPartiallyDelivered, OrderStatusInProgress, false},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusSent, false},
		{OrderStatusSent, OrderStatusCancelled, true},
		{OrderStatusPartiallyDelivered, OrderStatusCancelled, true},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestTransitionSources(t *testing.T) {
	completed := TransitionSources(OrderStatusCompleted)
	if len(completed) != 2 || completed[0] != OrderStatusInProgress || completed[1] != OrderStatusPartiallyDelivered {
		t.Fatalf("unexpected sources for completed: %v", completed)
	}

	cancelled := TransitionSources(OrderStatusCancelled)
	if len(cancelled) != 5 {
		t.Fatalf("expected the five non-terminal statuses, got %v", cancelled)
	}
	for _, status := range cancelled {
		if status.IsTerminal() {
			t.Fatalf("terminal status %s must not be cancellable", status)
		}
	}

	accepted := TransitionSources(OrderStatusAccepted)
	if len(accepted) != 1 || accepted[0] != OrderStatusInNegotiation {
		t.Fatalf("unexpected sources for accepted: %v", accepted)
	}
}
