package calendar

// FetchResult is the contract boundary between the fetch and reconcile
// stages: either Events (success) or Error (failure), never both.
type FetchResult struct {
	Events        []Event
	Error         *FetchError
	RetryAttempts int
}

func Success(events []Event, retryAttempts int) FetchResult {
	if events == nil {
		events = []Event{}
	}
	return FetchResult{Events: events, RetryAttempts: retryAttempts}
}

func Failure(err *FetchError, retryAttempts int) FetchResult {
	return FetchResult{Events: []Event{}, Error: err, RetryAttempts: retryAttempts}
}

func (r FetchResult) IsSuccess() bool {
	return r.Error == nil
}
