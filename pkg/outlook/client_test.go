package outlook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alarmo/alarmo/pkg/calendar"
)

func testProvider(server *httptest.Server) *Provider {
	return NewProviderWithClient(server.URL, func(ctx context.Context, accessToken string) *http.Client {
		return server.Client()
	})
}

func TestFetchEvents(t *testing.T) {
	ctx := context.Background()
	from := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 30)

	t.Run("Decodes events and degrades missing nested fields", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/me/events", r.URL.Path)
			assert.Contains(t, r.URL.Query().Get("$filter"), "start/dateTime ge '2025-06-01T00:00:00'")
			assert.Equal(t, "250", r.URL.Query().Get("$top"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"value": [
					{
						"id": "ev-1",
						"subject": "Team meeting",
						"bodyPreview": "Agenda attached",
						"location": {"displayName": "Room 4"},
						"start": {"dateTime": "2025-06-10T09:00:00.0000000", "timeZone": "UTC"},
						"end": {"dateTime": "2025-06-10T10:00:00.0000000", "timeZone": "UTC"}
					},
					{
						"id": "ev-2",
						"subject": "No location",
						"start": {"dateTime": "2025-06-11T09:00:00.0000000", "timeZone": "UTC"}
					}
				]
			}`))
		}))
		defer server.Close()

		events, err := testProvider(server).FetchEvents(ctx, "tok", from, to)
		require.NoError(t, err)
		require.Len(t, events, 2)

		assert.Equal(t, "ev-1", events[0].ID)
		assert.Equal(t, "Team meeting", events[0].Title)
		assert.Equal(t, "Room 4", events[0].Location)
		assert.Equal(t, "Agenda attached", events[0].Description)
		assert.Equal(t, time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC), events[0].StartTime)
		require.NotNil(t, events[0].EndTime)

		assert.Equal(t, "", events[1].Location)
		assert.Equal(t, "", events[1].Description)
		assert.Nil(t, events[1].EndTime)
	})

	t.Run("Events without a start time are skipped", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"value": [{"id": "broken", "subject": "No start"}]}`))
		}))
		defer server.Close()

		events, err := testProvider(server).FetchEvents(ctx, "tok", from, to)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("Server errors are temporary, auth rejection is permanent", func(t *testing.T) {
		cases := []struct {
			status    int
			retryable bool
			code      calendar.ErrorCode
		}{
			{http.StatusTooManyRequests, true, calendar.ErrCodeRateLimited},
			{http.StatusServiceUnavailable, true, calendar.ErrCodeServerError},
			{http.StatusUnauthorized, false, calendar.ErrCodeUnauthorized},
			{http.StatusForbidden, false, calendar.ErrCodeUnauthorized},
		}
		for _, c := range cases {
			status := c.status
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}))

			_, err := testProvider(server).FetchEvents(ctx, "tok", from, to)
			require.Error(t, err, "status %d", status)
			code, retryable := calendar.Classify(err)
			assert.Equal(t, c.retryable, retryable, "status %d", status)
			assert.Equal(t, c.code, code, "status %d", status)
			server.Close()
		}
	})

	t.Run("Malformed body is a permanent bad response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"value": [`))
		}))
		defer server.Close()

		_, err := testProvider(server).FetchEvents(ctx, "tok", from, to)
		require.Error(t, err)
		code, retryable := calendar.Classify(err)
		assert.False(t, retryable)
		assert.Equal(t, calendar.ErrCodeBadResponse, code)
	})
}
