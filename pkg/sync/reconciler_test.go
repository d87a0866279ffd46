package sync

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alarmo/alarmo/pkg/alarm"
	"github.com/alarmo/alarmo/pkg/calendar"
)

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	userId := uuid.New()
	start := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)

	t.Run("No match creates an enabled alarm fifteen minutes early", func(t *testing.T) {
		repo := alarm.NewStubRepository()
		reconciler := NewReconciler(repo)
		event := calendar.Event{ID: "ev-1", Title: "Dentist", StartTime: start}

		result, err := reconciler.Reconcile(ctx, userId, event, nil, false)
		require.NoError(t, err)

		assert.Equal(t, StatusCreated, result.Event.Status)
		assert.True(t, result.Event.AlarmCreated)
		require.NotNil(t, result.Alarm)
		assert.Equal(t, start.Add(-15*time.Minute), result.Alarm.TriggerTime)
		assert.True(t, result.Alarm.Enabled)
		assert.Contains(t, result.Alarm.Name, "ev-1")
		assert.Equal(t, 1, repo.Stored)
	})

	t.Run("Match without force skips and warns", func(t *testing.T) {
		repo := alarm.NewStubRepository()
		existing := alarm.Alarm{ID: uuid.New(), UserID: userId, Name: "Dentist [ev-1]", TriggerTime: start.Add(-15 * time.Minute)}
		repo.Alarms = []alarm.Alarm{existing}
		reconciler := NewReconciler(repo)
		event := calendar.Event{ID: "ev-1", Title: "Dentist", StartTime: start}

		result, err := reconciler.Reconcile(ctx, userId, event, repo.Alarms, false)
		require.NoError(t, err)

		assert.Equal(t, StatusSkipped, result.Event.Status)
		assert.False(t, result.Event.AlarmCreated)
		assert.Contains(t, result.Warning, "already exists")
		assert.Equal(t, 0, repo.Stored)
		assert.Equal(t, 0, repo.Updated)
	})

	t.Run("Match with force overwrites name and trigger time", func(t *testing.T) {
		repo := alarm.NewStubRepository()
		existing := alarm.Alarm{ID: uuid.New(), UserID: userId, Name: "Dentist [ev-1]", TriggerTime: start.Add(-15 * time.Minute), Enabled: true}
		repo.Alarms = []alarm.Alarm{existing}
		reconciler := NewReconciler(repo)
		movedStart := start.Add(30 * time.Minute)
		event := calendar.Event{ID: "ev-1", Title: "Dentist (moved)", StartTime: movedStart}

		result, err := reconciler.Reconcile(ctx, userId, event, repo.Alarms, true)
		require.NoError(t, err)

		assert.Equal(t, StatusUpdated, result.Event.Status)
		assert.Equal(t, 1, repo.Updated)
		require.NotNil(t, result.Alarm)
		assert.Equal(t, movedStart.Add(-15*time.Minute), result.Alarm.TriggerTime)
		assert.Contains(t, result.Alarm.Name, "Dentist (moved)")
	})

	t.Run("Title match within 59 minutes is the same event", func(t *testing.T) {
		repo := alarm.NewStubRepository()
		repo.Alarms = []alarm.Alarm{{ID: uuid.New(), UserID: userId, Name: "Dentist", TriggerTime: start}}
		reconciler := NewReconciler(repo)
		event := calendar.Event{ID: "ev-9", Title: "Dentist", StartTime: start.Add(59 * time.Minute)}

		result, err := reconciler.Reconcile(ctx, userId, event, repo.Alarms, false)
		require.NoError(t, err)
		assert.Equal(t, StatusSkipped, result.Event.Status)
	})

	t.Run("Title match at 61 minutes is a different event", func(t *testing.T) {
		repo := alarm.NewStubRepository()
		repo.Alarms = []alarm.Alarm{{ID: uuid.New(), UserID: userId, Name: "Dentist", TriggerTime: start}}
		reconciler := NewReconciler(repo)
		event := calendar.Event{ID: "ev-9", Title: "Dentist", StartTime: start.Add(61 * time.Minute)}

		result, err := reconciler.Reconcile(ctx, userId, event, repo.Alarms, false)
		require.NoError(t, err)
		assert.Equal(t, StatusCreated, result.Event.Status)
		assert.Equal(t, 1, repo.Stored)
	})

	t.Run("Event without title is a per-event error", func(t *testing.T) {
		repo := alarm.NewStubRepository()
		reconciler := NewReconciler(repo)
		event := calendar.Event{ID: "ev-3", StartTime: start}

		_, err := reconciler.Reconcile(ctx, userId, event, nil, false)
		assert.Error(t, err)
		assert.Equal(t, 0, repo.Stored)
	})

	t.Run("Store failure surfaces as a per-event error", func(t *testing.T) {
		repo := alarm.NewStubRepository()
		repo.FailOn = "Cursed"
		reconciler := NewReconciler(repo)
		event := calendar.Event{ID: "ev-4", Title: "Cursed meeting", StartTime: start}

		_, err := reconciler.Reconcile(ctx, userId, event, nil, false)
		assert.Error(t, err)
	})
}
