package connection

import (
	"time"

	"github.com/google/uuid"
)

// Connection links a user to one external calendar provider. The stored
// access token is supplied during setup; this service never acquires or
// refreshes tokens itself.
type Connection struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Provider     string
	AccessToken  string
	Enabled      bool
	LastSyncedAt *time.Time
	NextSyncAt   *time.Time
}
