package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/alarmo/alarmo/pkg/calendar"
)

const (
	primaryCalendarID = "primary"
	maxResults        = 250
)

// ServiceFactory builds an authenticated Google Calendar service from a
// caller-supplied access token. Injected so tests can substitute fakes;
// token acquisition and refresh are not this package's concern.
type ServiceFactory func(ctx context.Context, accessToken string) (*gcal.Service, error)

func defaultServiceFactory(ctx context.Context, accessToken string) (*gcal.Service, error) {
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	return gcal.NewService(ctx, option.WithTokenSource(tokenSource))
}

// Provider fetches events from the user's primary Google Calendar.
type Provider struct {
	newService ServiceFactory
}

func NewProvider() *Provider {
	return &Provider{newService: defaultServiceFactory}
}

func NewProviderWithFactory(factory ServiceFactory) *Provider {
	return &Provider{newService: factory}
}

func (p *Provider) Name() string {
	return calendar.ProviderGoogle
}

// FetchEvents lists single-instance events in the time window, ordered
// by start time and capped at 250 results per call.
func (p *Provider) FetchEvents(ctx context.Context, accessToken string, from time.Time, to time.Time) ([]calendar.Event, error) {
	service, err := p.newService(ctx, accessToken)
	if err != nil {
		err := fmt.Errorf("unable to build Google Calendar client: %w", err)
		log.Error(err)
		return nil, err
	}

	googleEvents, err := service.Events.List(primaryCalendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapGoogleError(err)
	}

	return googleEventsToEvents(googleEvents.Items), nil
}

// mapGoogleError translates Google API failures into the shared error
// taxonomy. Non-API errors (transport faults) pass through for the
// retry executor to classify.
func mapGoogleError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		log.Errorf("Google Calendar API error: %v", apiErr)
		return calendar.StatusError(calendar.ProviderGoogle, apiErr.Code)
	}
	log.Errorf("unable to retrieve events from Google Calendar: %v", err)
	return err
}

func googleEventsToEvents(googleEvents []*gcal.Event) []calendar.Event {
	events := make([]calendar.Event, 0, len(googleEvents))
	for _, item := range googleEvents {
		startTime, ok := parseEventTime(item.Start)
		if !ok {
			log.Warnf("skipping Google event %s without a usable start time", item.Id)
			continue
		}

		event := calendar.Event{
			ID:          item.Id,
			Title:       item.Summary,
			StartTime:   startTime,
			Location:    item.Location,
			Description: item.Description,
		}
		if endTime, ok := parseEventTime(item.End); ok {
			event.EndTime = &endTime
		}
		events = append(events, event)
	}
	return events
}

// parseEventTime reads a Google event timestamp. All-day events carry a
// date-only value instead of a dateTime, so that field is the fallback.
func parseEventTime(edt *gcal.EventDateTime) (time.Time, bool) {
	if edt == nil {
		return time.Time{}, false
	}
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			return t, true
		}
	}
	if edt.Date != "" {
		if t, err := time.ParseInLocation("2006-01-02", edt.Date, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
