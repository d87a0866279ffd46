package calendar

import (
	"time"
)

// Event is a provider-agnostic calendar event. The ID is the provider's
// native identifier and is treated as an opaque string.
type Event struct {
	ID          string
	Title       string
	StartTime   time.Time
	EndTime     *time.Time
	Location    string
	Description string
}
