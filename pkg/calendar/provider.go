package calendar

import (
	"context"
	"fmt"
	"time"
)

const (
	ProviderGoogle  = "google"
	ProviderOutlook = "outlook"
	ProviderApple   = "apple"
	ProviderCalDAV  = "caldav"
)

// KnownProvider reports whether name is one of the supported provider
// identifiers. Unknown identifiers are rejected at request validation,
// before any adapter is reached.
func KnownProvider(name string) bool {
	switch name {
	case ProviderGoogle, ProviderOutlook, ProviderApple, ProviderCalDAV:
		return true
	}
	return false
}

// Provider fetches raw events from one external calendar service and
// normalizes them into Events. Implementations must not mutate alarm
// state; their only side effect is the outbound HTTP call.
type Provider interface {
	Name() string
	FetchEvents(ctx context.Context, accessToken string, from time.Time, to time.Time) ([]Event, error)
}

// Registry maps provider identifiers to their implementations.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: map[string]Provider{}}
}

func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("no calendar provider registered for %q", name)
	}
	return p, nil
}
