package caldav

import (
	"context"
	"time"

	"github.com/alarmo/alarmo/pkg/calendar"
)

// AppleProvider is a placeholder for the Apple Calendar integration.
// It fails fast with a permanent error instead of returning zero events:
// a silent empty success would be indistinguishable from "no events".
type AppleProvider struct{}

func NewAppleProvider() *AppleProvider {
	return &AppleProvider{}
}

func (p *AppleProvider) Name() string {
	return calendar.ProviderApple
}

func (p *AppleProvider) FetchEvents(_ context.Context, _ string, _ time.Time, _ time.Time) ([]calendar.Event, error) {
	return nil, calendar.NewPermanentError(calendar.ErrCodeNotSupported,
		"Apple Calendar synchronization is not yet available", nil)
}

// CalDAVProvider is a placeholder for generic CalDAV servers. The REPORT
// response parsing in this package is the building block for the live
// integration; the outbound calendar-query call is not implemented yet.
type CalDAVProvider struct{}

func NewCalDAVProvider() *CalDAVProvider {
	return &CalDAVProvider{}
}

func (p *CalDAVProvider) Name() string {
	return calendar.ProviderCalDAV
}

func (p *CalDAVProvider) FetchEvents(_ context.Context, _ string, _ time.Time, _ time.Time) ([]calendar.Event, error) {
	return nil, calendar.NewPermanentError(calendar.ErrCodeNotSupported,
		"CalDAV synchronization is not yet available", nil)
}
