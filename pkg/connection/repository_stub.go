package connection

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type StubRepository struct {
	Connections []Connection
	Recorded    map[uuid.UUID]time.Time
}

func NewStubRepository() *StubRepository {
	return &StubRepository{Recorded: map[uuid.UUID]time.Time{}}
}

func (r *StubRepository) FindDue(_ context.Context, now time.Time) ([]Connection, error) {
	due := make([]Connection, 0)
	for _, c := range r.Connections {
		if !c.Enabled {
			continue
		}
		if c.NextSyncAt == nil || !c.NextSyncAt.After(now) {
			due = append(due, c)
		}
	}
	return due, nil
}

func (r *StubRepository) Store(_ context.Context, conn Connection) (Connection, error) {
	if conn.ID == uuid.Nil {
		conn.ID = uuid.New()
	}
	r.Connections = append(r.Connections, conn)
	return conn, nil
}

func (r *StubRepository) RecordSync(_ context.Context, id uuid.UUID, syncedAt time.Time, nextSyncAt *time.Time) error {
	r.Recorded[id] = syncedAt
	for i, c := range r.Connections {
		if c.ID == id {
			r.Connections[i].LastSyncedAt = &syncedAt
			r.Connections[i].NextSyncAt = nextSyncAt
		}
	}
	return nil
}
