package sync

import (
	"time"

	"github.com/google/uuid"
)

// Request describes one sync invocation. The access token is supplied
// by the caller; this service never acquires or refreshes tokens.
type Request struct {
	UserID        uuid.UUID
	Provider      string
	AccessToken   string
	SyncFromDate  *time.Time
	SyncToDate    *time.Time
	ForceFullSync bool
}

type ProcessingStatus string

const (
	StatusCreated ProcessingStatus = "created"
	StatusUpdated ProcessingStatus = "updated"
	StatusSkipped ProcessingStatus = "skipped"
)

// ProcessedEvent is the per-event audit trail entry of a sync run.
type ProcessedEvent struct {
	ExternalID   string
	Title        string
	StartTime    time.Time
	EndTime      *time.Time
	Location     string
	AlarmCreated bool
	Status       ProcessingStatus
}

// Outcome aggregates one sync run. Every fetched event yields exactly
// one of created/updated/skipped; nothing is silently dropped.
type Outcome struct {
	EventsProcessed   int
	AlarmsCreated     int
	AlarmsUpdated     int
	AlarmsSkipped     int
	SyncedAt          time.Time
	NextSyncSuggested *time.Time
	Warnings          []string
	ProcessedEvents   []ProcessedEvent
}

// ValidationError rejects a malformed request before any I/O happens.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}
