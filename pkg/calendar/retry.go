package calendar

import (
	"context"
	"errors"
	"net"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
)

// Retryer executes a single provider fetch with a bounded retry policy
// and produces a FetchResult. Temporary failures are retried with
// exponential backoff (baseDelay * 2^attempt); permanent failures fail
// immediately. Backoff delays are the only suspension points and are
// cancellable through ctx.
type Retryer struct {
	maxRetries int
	baseDelay  time.Duration
}

func NewRetryer(maxRetries int, baseDelay time.Duration) *Retryer {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	return &Retryer{maxRetries: maxRetries, baseDelay: baseDelay}
}

// fetchAttempt is the immutable per-attempt retry context. A new value
// is derived for each attempt instead of sharing mutable counters.
type fetchAttempt struct {
	number int
}

func (a fetchAttempt) backoff(base time.Duration) time.Duration {
	return base * (1 << a.number)
}

func (a fetchAttempt) next() fetchAttempt {
	return fetchAttempt{number: a.number + 1}
}

// Fetch runs provider.FetchEvents until it succeeds, a permanent error
// is hit, or maxRetries temporary failures have been retried.
func (r *Retryer) Fetch(ctx context.Context, provider Provider, accessToken string, from time.Time, to time.Time) FetchResult {
	attempt := fetchAttempt{}
	for {
		events, err := provider.FetchEvents(ctx, accessToken, from, to)
		if err == nil {
			return Success(events, attempt.number)
		}

		code, retryable := Classify(err)
		if !retryable || attempt.number >= r.maxRetries {
			if retryable {
				log.Warnf("%s fetch still failing after %d retries: %v", provider.Name(), attempt.number, err)
			} else {
				log.Errorf("%s fetch failed with a non-retryable error: %v", provider.Name(), err)
			}
			return Failure(&FetchError{
				Provider:   provider.Name(),
				Code:       code,
				Message:    err.Error(),
				Retryable:  retryable,
				OccurredAt: time.Now(),
				Cause:      err,
			}, attempt.number)
		}

		delay := attempt.backoff(r.baseDelay)
		log.Debugf("%s fetch attempt %d failed (%v), retrying in %s", provider.Name(), attempt.number+1, err, delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Failure(&FetchError{
				Provider:   provider.Name(),
				Code:       ErrCodeCancelled,
				Message:    "fetch cancelled while waiting to retry",
				Retryable:  false,
				OccurredAt: time.Now(),
				Cause:      ctx.Err(),
			}, attempt.number)
		case <-timer.C:
		}
		attempt = attempt.next()
	}
}

// Classify decides once, from the terminal error, whether the failure
// is retryable and which taxonomy code it carries. Anything not
// explicitly classified is permanent: failing closed beats retrying
// indefinitely on unknown conditions.
func Classify(err error) (ErrorCode, bool) {
	var tmpErr *TemporaryError
	if errors.As(err, &tmpErr) {
		return tmpErr.Code, true
	}
	var permErr *PermanentError
	if errors.As(err, &permErr) {
		return permErr.Code, false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrCodeNetwork, true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return ErrCodeNetwork, true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrCodeNetwork, true
	}
	return ErrCodeUnknown, false
}
