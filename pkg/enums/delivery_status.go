package enums

import "fmt"

// DeliveryStatus tracks fulfillment progress after a quotation is accepted.
type DeliveryStatus string

const (
	DeliveryStatusPending            DeliveryStatus = "pending"
	DeliveryStatusInTransit          DeliveryStatus = "in_transit"
	DeliveryStatusDelivered          DeliveryStatus = "delivered"
	DeliveryStatusPartiallyDelivered DeliveryStatus = "partially_delivered"
)

var validDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusPending,
	DeliveryStatusInTransit,
	DeliveryStatusDelivered,
	DeliveryStatusPartiallyDelivered,
}

// String implements fmt.Stringer.
func (d DeliveryStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryStatus.
func (d DeliveryStatus) IsValid() bool {
	for _, candidate := range validDeliveryStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryStatus converts raw input into a DeliveryStatus.
func ParseDeliveryStatus(value string) (DeliveryStatus, error) {
	for _, candidate := range validDeliveryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery status %q", value)
}
