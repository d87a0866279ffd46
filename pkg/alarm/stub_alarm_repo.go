package alarm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// StubRepository is an in-memory alarm store for tests.
type StubRepository struct {
	Alarms  []Alarm
	Stored  int
	Updated int

	// FailOn makes Store/Update fail when the alarm name contains the
	// given substring, to simulate per-event processing failures.
	FailOn string
}

func NewStubRepository() *StubRepository {
	return &StubRepository{Alarms: []Alarm{}}
}

func (r *StubRepository) FindByUser(_ context.Context, userId uuid.UUID) ([]Alarm, error) {
	alarms := make([]Alarm, 0)
	for _, a := range r.Alarms {
		if a.UserID == userId {
			alarms = append(alarms, a)
		}
	}
	return alarms, nil
}

func (r *StubRepository) Store(_ context.Context, alarm Alarm) (Alarm, error) {
	if r.failing(alarm) {
		return Alarm{}, fmt.Errorf("simulated store failure for %q", alarm.Name)
	}
	if alarm.ID == uuid.Nil {
		alarm.ID = uuid.New()
	}
	r.Alarms = append(r.Alarms, alarm)
	r.Stored++
	return alarm, nil
}

func (r *StubRepository) Update(_ context.Context, alarm Alarm) error {
	if r.failing(alarm) {
		return fmt.Errorf("simulated update failure for %q", alarm.Name)
	}
	for i, a := range r.Alarms {
		if a.ID == alarm.ID {
			r.Alarms[i] = alarm
			r.Updated++
			return nil
		}
	}
	return fmt.Errorf("alarm %s not found", alarm.ID)
}

func (r *StubRepository) failing(alarm Alarm) bool {
	return r.FailOn != "" && strings.Contains(alarm.Name, r.FailOn)
}
