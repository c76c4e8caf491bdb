package enums

import "fmt"

// CanvassStatus maps to the canvass_requests.status check constraint.
type CanvassStatus string

const (
	CanvassStatusPending   CanvassStatus = "pending"
	CanvassStatusResponded CanvassStatus = "responded"
	CanvassStatusClosed    CanvassStatus = "closed"
)

var validCanvassStatuses = []CanvassStatus{
	CanvassStatusPending,
	CanvassStatusResponded,
	CanvassStatusClosed,
}

// IsValid checks whether the given status matches the canonical enum.
func (s CanvassStatus) IsValid() bool {
	for _, candidate := range validCanvassStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseCanvassStatus converts raw strings into CanvassStatus.
func ParseCanvassStatus(value string) (CanvassStatus, error) {
	for _, candidate := range validCanvassStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid canvass status %q", value)
}
