package enums

import "fmt"

// MessageType classifies entries in an order's negotiation thread.
type MessageType string

const (
	MessageTypeText      MessageType = "text"
	MessageTypeQuotation MessageType = "quotation"
	MessageTypeDelivery  MessageType = "delivery"
	MessageTypeInvoice   MessageType = "invoice"
	MessageTypeSystem    MessageType = "system"
)

var validMessageTypes = []MessageType{
	MessageTypeText,
	MessageTypeQuotation,
	MessageTypeDelivery,
	MessageTypeInvoice,
	MessageTypeSystem,
}

// String implements fmt.Stringer.
func (m MessageType) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MessageType.
func (m MessageType) IsValid() bool {
	for _, candidate := range validMessageTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMessageType converts raw input into a MessageType.
func ParseMessageType(value string) (MessageType, error) {
	for _, candidate := range validMessageTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid message type %q", value)
}
