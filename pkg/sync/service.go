package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/alarmo/alarmo/internal/utils"
	"github.com/alarmo/alarmo/pkg/alarm"
	"github.com/alarmo/alarmo/pkg/calendar"
	"github.com/alarmo/alarmo/pkg/user"
)

const (
	defaultWindow = 30 * 24 * time.Hour

	// retryFailureDelay is the fixed follow-up suggestion after a
	// transient fetch failure exhausted its retries.
	retryFailureDelay = 30 * time.Minute

	maxHorizon     = 2  // years SyncToDate may reach into the future
	maxFromHorizon = 1  // years SyncFromDate may reach into the future
	highActivity   = 10 // processed events above which syncs speed up
	highChanges    = 5  // alarm mutations above which syncs speed up
)

type Service interface {
	// Sync validates the request, fetches events from the provider and
	// reconciles them into the user's alarms. Validation errors and
	// permanent integration errors are returned; everything else is
	// absorbed into the outcome's warnings.
	Sync(ctx context.Context, req Request) (Outcome, error)
}

type ServiceImpl struct {
	registry   *calendar.Registry
	retryer    *calendar.Retryer
	reconciler *Reconciler
	alarmRepo  alarm.Repository
	userRepo   user.Repository
	clock      utils.Clock
}

func NewService(registry *calendar.Registry, retryer *calendar.Retryer, reconciler *Reconciler,
	alarmRepo alarm.Repository, userRepo user.Repository) *ServiceImpl {
	return &ServiceImpl{
		registry:   registry,
		retryer:    retryer,
		reconciler: reconciler,
		alarmRepo:  alarmRepo,
		userRepo:   userRepo,
		clock:      &utils.SystemClock{},
	}
}

func (s *ServiceImpl) Sync(ctx context.Context, req Request) (Outcome, error) {
	now := s.clock.Now()

	if err := validate(req, now); err != nil {
		return Outcome{}, err
	}

	found, err := s.userRepo.FindById(ctx, req.UserID)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to look up user %s: %w", req.UserID, err)
	}
	if found == nil {
		return Outcome{}, newValidationError(fmt.Sprintf("user %s does not exist", req.UserID))
	}

	from, to := resolveWindow(req, now)

	provider, err := s.registry.Get(req.Provider)
	if err != nil {
		return Outcome{}, calendar.NewPermanentError(calendar.ErrCodeNotSupported,
			fmt.Sprintf("provider %q is not available", req.Provider), err)
	}

	log.Infof("syncing %s calendar for user %s (%s .. %s)", req.Provider, req.UserID,
		from.Format(time.RFC3339), to.Format(time.RFC3339))

	result := s.retryer.Fetch(ctx, provider, req.AccessToken, from, to)
	if !result.IsSuccess() {
		if result.Error.Retryable {
			retryAt := now.Add(retryFailureDelay)
			return Outcome{
				SyncedAt:          now,
				NextSyncSuggested: &retryAt,
				Warnings: []string{fmt.Sprintf(
					"temporary %s failure after %d retries: %s; another sync will be attempted later",
					req.Provider, result.RetryAttempts, result.Error.Message)},
				ProcessedEvents: []ProcessedEvent{},
			}, nil
		}
		// Permanent failures need caller-visible remediation, e.g.
		// re-authentication, so they are not swallowed.
		return Outcome{}, result.Error
	}

	existing, err := s.alarmRepo.FindByUser(ctx, req.UserID)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to load alarms for user %s: %w", req.UserID, err)
	}

	outcome := Outcome{
		SyncedAt:        now,
		Warnings:        []string{},
		ProcessedEvents: make([]ProcessedEvent, 0, len(result.Events)),
	}

	for _, event := range result.Events {
		res, err := s.reconciler.Reconcile(ctx, req.UserID, event, existing, req.ForceFullSync)
		if err != nil {
			log.Warnf("event %s failed to reconcile: %v", event.ID, err)
			outcome.Warnings = append(outcome.Warnings,
				fmt.Sprintf("event %q (%s) was skipped: %v", event.Title, event.ID, err))
			outcome.AlarmsSkipped++
			outcome.ProcessedEvents = append(outcome.ProcessedEvents, ProcessedEvent{
				ExternalID: event.ID,
				Title:      event.Title,
				StartTime:  event.StartTime,
				EndTime:    event.EndTime,
				Location:   event.Location,
				Status:     StatusSkipped,
			})
			continue
		}

		switch res.Event.Status {
		case StatusCreated:
			outcome.AlarmsCreated++
			// Make later events in this batch see the new alarm.
			existing = append(existing, *res.Alarm)
		case StatusUpdated:
			outcome.AlarmsUpdated++
		case StatusSkipped:
			outcome.AlarmsSkipped++
		}
		if res.Warning != "" {
			outcome.Warnings = append(outcome.Warnings, res.Warning)
		}
		outcome.ProcessedEvents = append(outcome.ProcessedEvents, res.Event)
	}

	outcome.EventsProcessed = len(result.Events)
	nextSync := now.Add(nextSyncInterval(req.Provider, outcome.EventsProcessed,
		outcome.AlarmsCreated+outcome.AlarmsUpdated))
	outcome.NextSyncSuggested = &nextSync

	log.Infof("sync finished for user %s: %d events, %d created, %d updated, %d skipped",
		req.UserID, outcome.EventsProcessed, outcome.AlarmsCreated, outcome.AlarmsUpdated, outcome.AlarmsSkipped)
	return outcome, nil
}

func validate(req Request, now time.Time) error {
	if req.UserID == uuid.Nil {
		return newValidationError("userId is required")
	}
	if !calendar.KnownProvider(req.Provider) {
		return newValidationError(fmt.Sprintf("unknown calendar provider %q", req.Provider))
	}
	if strings.TrimSpace(req.AccessToken) == "" {
		return newValidationError("accessToken is required")
	}
	if req.SyncFromDate != nil && req.SyncToDate != nil && !req.SyncToDate.After(*req.SyncFromDate) {
		return newValidationError("syncToDate must be after syncFromDate")
	}
	// Without an explicit syncFromDate the window starts now, so the end
	// must lie in the future for the resolved window to be valid.
	if req.SyncFromDate == nil && req.SyncToDate != nil && !req.SyncToDate.After(now) {
		return newValidationError("syncToDate must be in the future")
	}
	if req.SyncToDate != nil && req.SyncToDate.After(now.AddDate(maxHorizon, 0, 0)) {
		return newValidationError("syncToDate must not be more than two years in the future")
	}
	if req.SyncFromDate != nil && req.SyncFromDate.After(now.AddDate(maxFromHorizon, 0, 0)) {
		return newValidationError("syncFromDate is unreasonably far in the future")
	}
	return nil
}

// resolveWindow applies the default window of today through thirty days
// out to whatever the request left unset.
func resolveWindow(req Request, now time.Time) (time.Time, time.Time) {
	from := now
	if req.SyncFromDate != nil {
		from = *req.SyncFromDate
	}
	to := from.Add(defaultWindow)
	if req.SyncToDate != nil {
		to = *req.SyncToDate
	}
	return from, to
}

// nextSyncInterval suggests when to sync again. Base intervals reflect
// relative provider API reliability and cost; high activity halves the
// interval, an empty window doubles it.
func nextSyncInterval(provider string, eventsProcessed int, alarmsChanged int) time.Duration {
	var base time.Duration
	switch provider {
	case calendar.ProviderGoogle:
		base = 4 * time.Hour
	case calendar.ProviderOutlook:
		base = 6 * time.Hour
	case calendar.ProviderApple:
		base = 8 * time.Hour
	case calendar.ProviderCalDAV:
		base = 12 * time.Hour
	default:
		// Unknown providers are rejected during validation.
		base = 12 * time.Hour
	}

	if eventsProcessed > highActivity || alarmsChanged > highChanges {
		return base / 2
	}
	if eventsProcessed == 0 {
		return base * 2
	}
	return base
}
