package alarm

import (
	"time"

	"github.com/google/uuid"
)

// Alarm is a user-owned alarm. Alarms created from an external calendar
// event carry the event's external id inside Name so later syncs can
// recognize them.
type Alarm struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	TriggerTime time.Time
	Enabled     bool
}
