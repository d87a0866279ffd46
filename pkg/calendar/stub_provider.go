package calendar

import (
	"context"
	"time"
)

// StubProvider is a scriptable Provider for tests. Each FetchEvents call
// consumes the next error from Errs; once Errs is exhausted the call
// succeeds with Events.
type StubProvider struct {
	ProviderName string
	Events       []Event
	Errs         []error
	Calls        int
}

func NewStubProvider(name string) *StubProvider {
	return &StubProvider{ProviderName: name}
}

func (s *StubProvider) Name() string {
	return s.ProviderName
}

func (s *StubProvider) FetchEvents(_ context.Context, _ string, _ time.Time, _ time.Time) ([]Event, error) {
	s.Calls++
	if len(s.Errs) > 0 {
		err := s.Errs[0]
		s.Errs = s.Errs[1:]
		return nil, err
	}
	return s.Events, nil
}
