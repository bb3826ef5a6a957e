package enums

import "fmt"

// RequestPriority ranks how urgently a material request needs fulfillment.
type RequestPriority string

const (
	RequestPriorityLow    RequestPriority = "low"
	RequestPriorityMedium RequestPriority = "medium"
	RequestPriorityHigh   RequestPriority = "high"
	RequestPriorityUrgent RequestPriority = "urgent"
)

var validRequestPriorities = []RequestPriority{
	RequestPriorityLow,
	RequestPriorityMedium,
	RequestPriorityHigh,
	RequestPriorityUrgent,
}

// IsValid reports whether the value is a known RequestPriority.
func (p RequestPriority) IsValid() bool {
	for _, candidate := range validRequestPriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseRequestPriority converts raw input into a RequestPriority.
func ParseRequestPriority(value string) (RequestPriority, error) {
	for _, candidate := range validRequestPriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid request priority %q", value)
}
