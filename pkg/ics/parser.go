package ics

import (
	"bytes"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	log "github.com/sirupsen/logrus"

	"github.com/alarmo/alarmo/pkg/calendar"
)

// ParseEvents extracts normalized events from raw RFC 5545 iCalendar
// text. A VEVENT is only emitted when UID, SUMMARY and DTSTART are all
// present; a malformed event is dropped and logged, never fatal to the
// rest of the payload.
func ParseEvents(body []byte) ([]calendar.Event, error) {
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, calendar.NewPermanentError(calendar.ErrCodeBadResponse, "unable to parse iCalendar payload", err)
	}

	events := make([]calendar.Event, 0)
	for _, ve := range cal.Events() {
		event, ok := parseVEvent(ve)
		if !ok {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (calendar.Event, bool) {
	var event calendar.Event

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		log.Warn("dropping VEVENT without UID")
		return event, false
	}
	event.ID = uidProp.Value

	summaryProp := ve.GetProperty(ical.ComponentPropertySummary)
	if summaryProp == nil || summaryProp.Value == "" {
		log.Warnf("dropping VEVENT %s without SUMMARY", event.ID)
		return event, false
	}
	event.Title = summaryProp.Value

	startProp := ve.GetProperty(ical.ComponentPropertyDtStart)
	if startProp == nil || startProp.Value == "" {
		log.Warnf("dropping VEVENT %s without DTSTART", event.ID)
		return event, false
	}
	start, err := ParseDateTime(startProp.Value)
	if err != nil {
		log.Warnf("dropping VEVENT %s with unparseable DTSTART %q: %v", event.ID, startProp.Value, err)
		return event, false
	}
	event.StartTime = start

	if endProp := ve.GetProperty(ical.ComponentPropertyDtEnd); endProp != nil && endProp.Value != "" {
		if end, err := ParseDateTime(endProp.Value); err == nil {
			event.EndTime = &end
		} else {
			log.Debugf("ignoring unparseable DTEND %q on VEVENT %s", endProp.Value, event.ID)
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		event.Location = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		event.Description = p.Value
	}

	return event, true
}

// ParseDateTime parses an iCalendar date or date-time value positionally.
// A trailing Z marks UTC; a date-only value is taken as local midnight
// (all-day events have no time-of-day component).
func ParseDateTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)

	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}
	if strings.Contains(v, "T") {
		return time.ParseInLocation("20060102T150405", v, time.Local)
	}
	return time.ParseInLocation("20060102", v, time.Local)
}
