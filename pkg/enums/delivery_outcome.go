package enums

import "fmt"

// DeliveryOutcome classifies a single webhook delivery attempt.
type DeliveryOutcome string

const (
	DeliveryOutcomeSuccess       DeliveryOutcome = "success"
	DeliveryOutcomeHTTPError     DeliveryOutcome = "http_error"
	DeliveryOutcomeTimeout       DeliveryOutcome = "timeout"
	DeliveryOutcomeNotConfigured DeliveryOutcome = "not_configured"
)

var validDeliveryOutcomes = []DeliveryOutcome{
	DeliveryOutcomeSuccess,
	DeliveryOutcomeHTTPError,
	DeliveryOutcomeTimeout,
	DeliveryOutcomeNotConfigured,
}

// String implements fmt.Stringer.
func (d DeliveryOutcome) String() string {
	return string(d)
}

// IsValid reports whether the value is known.
func (d DeliveryOutcome) IsValid() bool {
	for _, candidate := range validDeliveryOutcomes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryOutcome converts raw input into a DeliveryOutcome.
func ParseDeliveryOutcome(value string) (DeliveryOutcome, error) {
	for _, candidate := range validDeliveryOutcomes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery outcome %q", value)
}
