package sync

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alarmo/alarmo/internal/utils"
	"github.com/alarmo/alarmo/pkg/calendar"
	"github.com/alarmo/alarmo/pkg/connection"
)

func newScheduler(service Service, repo connection.Repository, clock utils.Clock) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{cron: cron.New(), service: service, connections: repo, clock: clock, ctx: ctx, cancel: cancel}
}

// blockingSyncService holds a sync open until its context is cancelled.
type blockingSyncService struct {
	started chan struct{}
	ctxErr  error
}

func (s *blockingSyncService) Sync(ctx context.Context, _ Request) (Outcome, error) {
	close(s.started)
	<-ctx.Done()
	s.ctxErr = ctx.Err()
	return Outcome{}, ctx.Err()
}

func TestRunDueSyncs(t *testing.T) {
	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	clock := &utils.MockClock{FixedNow: now}

	t.Run("Due connections are synced and rescheduled", func(t *testing.T) {
		repo := connection.NewStubRepository()
		next := now.Add(4 * time.Hour)
		service := &stubService{outcome: Outcome{SyncedAt: now, NextSyncSuggested: &next}}

		due := connection.Connection{ID: uuid.New(), UserID: uuid.New(), Provider: calendar.ProviderGoogle, AccessToken: "tok", Enabled: true}
		repo.Connections = []connection.Connection{due}

		newScheduler(service, repo, clock).RunDueSyncs()

		require.Len(t, service.requests, 1)
		assert.Equal(t, due.UserID, service.requests[0].UserID)
		require.NotNil(t, repo.Connections[0].NextSyncAt)
		assert.Equal(t, next, *repo.Connections[0].NextSyncAt)
	})

	t.Run("Connections that are not yet due are left alone", func(t *testing.T) {
		repo := connection.NewStubRepository()
		service := &stubService{}
		future := now.Add(time.Hour)
		repo.Connections = []connection.Connection{{
			ID: uuid.New(), UserID: uuid.New(), Provider: calendar.ProviderGoogle,
			AccessToken: "tok", Enabled: true, NextSyncAt: &future,
		}}

		newScheduler(service, repo, clock).RunDueSyncs()

		assert.Empty(t, service.requests)
	})

	t.Run("A failing connection is pushed out instead of hot-looping", func(t *testing.T) {
		repo := connection.NewStubRepository()
		service := &stubService{err: calendar.NewPermanentError(calendar.ErrCodeUnauthorized, "status 401", nil)}
		repo.Connections = []connection.Connection{{
			ID: uuid.New(), UserID: uuid.New(), Provider: calendar.ProviderGoogle,
			AccessToken: "expired", Enabled: true,
		}}

		newScheduler(service, repo, clock).RunDueSyncs()

		require.NotNil(t, repo.Connections[0].NextSyncAt)
		assert.Equal(t, now.Add(24*time.Hour), *repo.Connections[0].NextSyncAt)
	})

	t.Run("Stop aborts an in-flight sync", func(t *testing.T) {
		repo := connection.NewStubRepository()
		repo.Connections = []connection.Connection{{
			ID: uuid.New(), UserID: uuid.New(), Provider: calendar.ProviderGoogle,
			AccessToken: "tok", Enabled: true,
		}}
		service := &blockingSyncService{started: make(chan struct{})}
		scheduler := newScheduler(service, repo, clock)

		done := make(chan struct{})
		go func() {
			scheduler.RunDueSyncs()
			close(done)
		}()

		<-service.started
		scheduler.Stop()
		<-done

		assert.ErrorIs(t, service.ctxErr, context.Canceled)
	})
}
