package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/alarmo/alarmo/pkg/alarm"
	"github.com/alarmo/alarmo/pkg/calendar"
)

const (
	// alarmLeadTime is how long before the event start the alarm fires,
	// so the user gets a warning instead of an on-time ring.
	alarmLeadTime = 15 * time.Minute

	// matchWindow is the maximum trigger-to-start distance for the
	// title-proximity match. It tolerates the fixed lead-time offset.
	matchWindow = 60 * time.Minute
)

// Reconciler decides, per external event, whether to create a new
// alarm, update an existing one, or skip, and applies that decision
// against the alarm store.
type Reconciler struct {
	alarmRepo alarm.Repository
}

func NewReconciler(alarmRepo alarm.Repository) *Reconciler {
	return &Reconciler{alarmRepo: alarmRepo}
}

// ReconcileResult is the outcome of reconciling a single event.
type ReconcileResult struct {
	Event ProcessedEvent
	// Alarm is the created or updated alarm, nil when the event was
	// skipped.
	Alarm *alarm.Alarm
	// Warning is set for skip outcomes that the user should see.
	Warning string
}

// Reconcile processes one event against the user's existing alarms. An
// error return means this single event failed; callers downgrade it to
// a warning plus a skipped outcome so one bad event never aborts the
// batch.
func (r *Reconciler) Reconcile(ctx context.Context, userId uuid.UUID, event calendar.Event, existing []alarm.Alarm, forceFullSync bool) (ReconcileResult, error) {
	if event.ID == "" {
		return ReconcileResult{}, fmt.Errorf("event has no identifier")
	}
	if event.Title == "" {
		return ReconcileResult{}, fmt.Errorf("event %s has no title", event.ID)
	}
	if event.StartTime.IsZero() {
		return ReconcileResult{}, fmt.Errorf("event %s has no start time", event.ID)
	}

	processed := ProcessedEvent{
		ExternalID: event.ID,
		Title:      event.Title,
		StartTime:  event.StartTime,
		EndTime:    event.EndTime,
		Location:   event.Location,
	}

	matched := findMatch(existing, event)
	if matched == nil {
		created, err := r.alarmRepo.Store(ctx, alarm.Alarm{
			UserID:      userId,
			Name:        alarmName(event),
			TriggerTime: event.StartTime.Add(-alarmLeadTime),
			Enabled:     true,
		})
		if err != nil {
			return ReconcileResult{}, fmt.Errorf("could not create alarm for event %s: %w", event.ID, err)
		}
		log.Debugf("created alarm %s for event %s", created.ID, event.ID)
		processed.AlarmCreated = true
		processed.Status = StatusCreated
		return ReconcileResult{Event: processed, Alarm: &created}, nil
	}

	if !forceFullSync {
		processed.Status = StatusSkipped
		return ReconcileResult{
			Event:   processed,
			Warning: fmt.Sprintf("alarm already exists for event %q (%s)", event.Title, event.ID),
		}, nil
	}

	updated := *matched
	updated.Name = alarmName(event)
	updated.TriggerTime = event.StartTime.Add(-alarmLeadTime)
	if err := r.alarmRepo.Update(ctx, updated); err != nil {
		return ReconcileResult{}, fmt.Errorf("could not update alarm for event %s: %w", event.ID, err)
	}
	log.Debugf("updated alarm %s for event %s", updated.ID, event.ID)
	processed.Status = StatusUpdated
	return ReconcileResult{Event: processed, Alarm: &updated}, nil
}

// alarmName embeds the external event id in the alarm name. The id in
// brackets is the durable linkage later syncs use to recognize the
// alarm.
func alarmName(event calendar.Event) string {
	return fmt.Sprintf("%s [%s]", event.Title, event.ID)
}

// findMatch returns the first alarm considered "the same as" the event:
// either the alarm name contains the event's external id, or the name
// equals the event title and the trigger time is within the match
// window of the event start.
//
// Known limitation: the title-proximity branch can mismatch two
// distinct events that share a title within an hour. The heuristic is
// kept as-is because not every alarm carries an embedded external id.
func findMatch(existing []alarm.Alarm, event calendar.Event) *alarm.Alarm {
	for i := range existing {
		if matchesEvent(existing[i], event) {
			return &existing[i]
		}
	}
	return nil
}

func matchesEvent(a alarm.Alarm, event calendar.Event) bool {
	if event.ID != "" && strings.Contains(a.Name, event.ID) {
		return true
	}
	if a.Name != event.Title {
		return false
	}
	diff := a.TriggerTime.Sub(event.StartTime)
	if diff < 0 {
		diff = -diff
	}
	return diff < matchWindow
}
