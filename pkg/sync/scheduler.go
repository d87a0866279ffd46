package sync

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/alarmo/alarmo/internal/utils"
	"github.com/alarmo/alarmo/pkg/connection"
)

// failedSyncDelay pushes a connection's next attempt out after a
// permanent failure, so a broken credential does not hot-loop.
const failedSyncDelay = 24 * time.Hour

// Scheduler periodically walks the stored calendar connections and runs
// a sync for every one whose suggested next-sync time has passed.
// Concurrent syncs for the same user/provider are avoided by running
// the due list sequentially.
type Scheduler struct {
	cron        *cron.Cron
	service     Service
	connections connection.Repository
	clock       utils.Clock
	ctx         context.Context
	cancel      context.CancelFunc
}

func NewScheduler(service Service, connections connection.Repository) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:        cron.New(),
		service:     service,
		connections: connections,
		clock:       &utils.SystemClock{},
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start registers the periodic job. spec is a cron expression, e.g.
// "@every 5m".
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.RunDueSyncs); err != nil {
		return err
	}
	s.cron.Start()
	log.Infof("sync scheduler started (%s)", spec)
	return nil
}

// Stop aborts any in-flight sync, including retry backoff waits, and
// waits for the running job to return.
func (s *Scheduler) Stop() {
	s.cancel()
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunDueSyncs performs one scheduler pass.
func (s *Scheduler) RunDueSyncs() {
	ctx := s.ctx
	now := s.clock.Now()

	due, err := s.connections.FindDue(ctx, now)
	if err != nil {
		log.Errorf("scheduler could not list due connections: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}
	log.Debugf("scheduler found %d due connections", len(due))

	for _, conn := range due {
		outcome, err := s.service.Sync(ctx, Request{
			UserID:      conn.UserID,
			Provider:    conn.Provider,
			AccessToken: conn.AccessToken,
		})
		if err != nil {
			log.Warnf("scheduled sync failed for connection %s (%s): %v", conn.ID, conn.Provider, err)
			retryAt := now.Add(failedSyncDelay)
			if err := s.connections.RecordSync(ctx, conn.ID, now, &retryAt); err != nil {
				log.Errorf("could not record failed sync for connection %s: %v", conn.ID, err)
			}
			continue
		}

		if err := s.connections.RecordSync(ctx, conn.ID, outcome.SyncedAt, outcome.NextSyncSuggested); err != nil {
			log.Errorf("could not record sync for connection %s: %v", conn.ID, err)
		}
	}
}
