package outlook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/alarmo/alarmo/pkg/calendar"
)

const (
	defaultBaseURL = "https://graph.microsoft.com/v1.0"
	maxResults     = 250

	// Graph returns event times without a zone designator.
	graphTimeLayout = "2006-01-02T15:04:05"
)

// ClientFactory builds a bearer-authenticated HTTP client from the
// caller-supplied access token.
type ClientFactory func(ctx context.Context, accessToken string) *http.Client

func defaultClientFactory(ctx context.Context, accessToken string) *http.Client {
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
}

// Provider fetches events from the signed-in user's Outlook calendar
// through the Microsoft Graph API.
type Provider struct {
	baseURL   string
	newClient ClientFactory
}

func NewProvider() *Provider {
	return &Provider{baseURL: defaultBaseURL, newClient: defaultClientFactory}
}

func NewProviderWithClient(baseURL string, factory ClientFactory) *Provider {
	return &Provider{baseURL: baseURL, newClient: factory}
}

func (p *Provider) Name() string {
	return calendar.ProviderOutlook
}

// FetchEvents calls /me/events with a $filter on the event window,
// capped at 250 results.
func (p *Provider) FetchEvents(ctx context.Context, accessToken string, from time.Time, to time.Time) ([]calendar.Event, error) {
	client := p.newClient(ctx, accessToken)

	filter := fmt.Sprintf("start/dateTime ge '%s' and end/dateTime le '%s'",
		from.UTC().Format(graphTimeLayout), to.UTC().Format(graphTimeLayout))
	query := url.Values{}
	query.Set("$filter", filter)
	query.Set("$orderby", "start/dateTime")
	query.Set("$top", fmt.Sprintf("%d", maxResults))
	query.Set("$select", "id,subject,bodyPreview,location,start,end")

	requestURL := fmt.Sprintf("%s/me/events?%s", p.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		log.Errorf("Failed to create Graph request: %v", err)
		return nil, err
	}
	req.Header.Set("Prefer", `outlook.timezone="UTC"`)

	resp, err := client.Do(req)
	if err != nil {
		log.Errorf("Failed to execute Graph request: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, calendar.StatusError(calendar.ProviderOutlook, resp.StatusCode)
	}

	var response struct {
		Value []graphEvent `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		err := calendar.NewPermanentError(calendar.ErrCodeBadResponse, "unable to decode Graph events response", err)
		log.Error(err)
		return nil, err
	}

	return graphEventsToEvents(response.Value), nil
}

type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type graphLocation struct {
	DisplayName string `json:"displayName"`
}

type graphEvent struct {
	Id          string         `json:"id"`
	Subject     string         `json:"subject"`
	BodyPreview string         `json:"bodyPreview"`
	Location    *graphLocation `json:"location"`
	Start       *graphDateTime `json:"start"`
	End         *graphDateTime `json:"end"`
}

// graphEventsToEvents normalizes Graph events. Missing nested fields
// (location display name, body preview) degrade to an empty string
// instead of failing the whole fetch.
func graphEventsToEvents(graphEvents []graphEvent) []calendar.Event {
	events := make([]calendar.Event, 0, len(graphEvents))
	for _, item := range graphEvents {
		startTime, ok := parseGraphTime(item.Start)
		if !ok {
			log.Warnf("skipping Outlook event %s without a usable start time", item.Id)
			continue
		}

		event := calendar.Event{
			ID:          item.Id,
			Title:       item.Subject,
			StartTime:   startTime,
			Description: item.BodyPreview,
		}
		if item.Location != nil {
			event.Location = item.Location.DisplayName
		}
		if endTime, ok := parseGraphTime(item.End); ok {
			event.EndTime = &endTime
		}
		events = append(events, event)
	}
	return events
}

func parseGraphTime(gdt *graphDateTime) (time.Time, bool) {
	if gdt == nil || gdt.DateTime == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(graphTimeLayout, gdt.DateTime)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
