package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderplan/wanderplan/internal/api"
	"github.com/wanderplan/wanderplan/internal/assistant"
	"github.com/wanderplan/wanderplan/internal/trip"
)

type mockPlanner struct {
	planFn func(ctx context.Context, city string, days int) (*trip.TripPlan, error)
}

func (m *mockPlanner) PlanTrip(ctx context.Context, city string, days int) (*trip.TripPlan, error) {
	return m.planFn(ctx, city, days)
}

type mockAssistant struct {
	handleFn func(ctx context.Context, query string) assistant.ChatResult
}

func (m *mockAssistant) HandleQuery(ctx context.Context, query string) assistant.ChatResult {
	return m.handleFn(ctx, query)
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(context.Context) error { return m.err }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okPlanner(t *testing.T) *mockPlanner {
	t.Helper()
	return &mockPlanner{
		planFn: func(_ context.Context, city string, days int) (*trip.TripPlan, error) {
			return &trip.TripPlan{City: city, Days: days}, nil
		},
	}
}

func newTestServer(t *testing.T, planner api.TripPlanner, chat api.ChatAssistant, pinger api.CachePinger) *httptest.Server {
	t.Helper()
	handlers := api.NewHandlers(planner, chat, pinger, testLogger())
	srv := httptest.NewServer(api.NewRouter(handlers, testLogger()))
	t.Cleanup(srv.Close)
	return srv
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func TestGetTrip_Success(t *testing.T) {
	planner := &mockPlanner{
		planFn: func(_ context.Context, city string, days int) (*trip.TripPlan, error) {
			assert.Equal(t, "Paris", city)
			assert.Equal(t, 4, days)
			return &trip.TripPlan{City: "Paris", Country: "France", Days: 4}, nil
		},
	}
	srv := newTestServer(t, planner, nil, nil)

	resp, err := http.Get(srv.URL + "/trip?city=Paris&days=4")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var plan trip.TripPlan
	decodeBody(t, resp, &plan)
	assert.Equal(t, "Paris", plan.City)
	assert.Equal(t, 4, plan.Days)
}

func TestGetTrip_DaysDefaultsToThree(t *testing.T) {
	planner := &mockPlanner{
		planFn: func(_ context.Context, _ string, days int) (*trip.TripPlan, error) {
			assert.Equal(t, 3, days)
			return &trip.TripPlan{City: "Paris", Days: days}, nil
		},
	}
	srv := newTestServer(t, planner, nil, nil)

	resp, err := http.Get(srv.URL + "/trip?city=Paris")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetTrip_MissingCity(t *testing.T) {
	srv := newTestServer(t, okPlanner(t), nil, nil)

	resp, err := http.Get(srv.URL + "/trip")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error      string `json:"error"`
		StatusCode int    `json:"status_code"`
	}
	decodeBody(t, resp, &body)
	assert.Contains(t, body.Error, "city")
	assert.Equal(t, http.StatusBadRequest, body.StatusCode)
}

func TestGetTrip_InvalidDays(t *testing.T) {
	srv := newTestServer(t, okPlanner(t), nil, nil)

	for _, days := range []string{"0", "6", "-1", "abc", "2.5"} {
		resp, err := http.Get(srv.URL + "/trip?city=Paris&days=" + days)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "days=%s", days)
	}
}

func TestGetTrip_CityNotFound(t *testing.T) {
	planner := &mockPlanner{
		planFn: func(_ context.Context, city string, _ int) (*trip.TripPlan, error) {
			return nil, &trip.NotFoundError{City: city}
		},
	}
	srv := newTestServer(t, planner, nil, nil)

	resp, err := http.Get(srv.URL + "/trip?city=Xyzzyville")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body struct {
		Error      string `json:"error"`
		StatusCode int    `json:"status_code"`
	}
	decodeBody(t, resp, &body)
	assert.Contains(t, body.Error, "Xyzzyville")
	assert.Equal(t, http.StatusNotFound, body.StatusCode)
}

func TestGetTrip_PlannerError(t *testing.T) {
	planner := &mockPlanner{
		planFn: func(_ context.Context, _ string, _ int) (*trip.TripPlan, error) {
			return nil, fmt.Errorf("something broke")
		},
	}
	srv := newTestServer(t, planner, nil, nil)

	resp, err := http.Get(srv.URL + "/trip?city=Paris")
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, resp, &body)
	assert.NotContains(t, body.Error, "something broke", "internal detail must not leak")
}

func TestChat_Success(t *testing.T) {
	chat := &mockAssistant{
		handleFn: func(_ context.Context, query string) assistant.ChatResult {
			assert.Equal(t, "3 days in Paris", query)
			return assistant.ChatResult{
				Query:    query,
				Response: "Here is your Paris itinerary.",
				TripData: &trip.TripPlan{City: "Paris", Days: 3},
			}
		},
	}
	srv := newTestServer(t, okPlanner(t), chat, nil)

	resp, err := http.Post(srv.URL+"/chat", "application/json",
		strings.NewReader(`{"query": "3 days in Paris"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result assistant.ChatResult
	decodeBody(t, resp, &result)
	assert.Equal(t, "Here is your Paris itinerary.", result.Response)
	require.NotNil(t, result.TripData)
	assert.Equal(t, "Paris", result.TripData.City)
}

func TestChat_FailuresStillReturn200(t *testing.T) {
	chat := &mockAssistant{
		handleFn: func(_ context.Context, query string) assistant.ChatResult {
			return assistant.ChatResult{
				Query:    query,
				Response: "I'm a travel planning assistant. Ask me about trips!",
				Err:      "Not a travel query",
			}
		},
	}
	srv := newTestServer(t, okPlanner(t), chat, nil)

	resp, err := http.Post(srv.URL+"/chat", "application/json",
		strings.NewReader(`{"query": "what is 2+2"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "assistant failures are conversational, not HTTP errors")

	var result assistant.ChatResult
	decodeBody(t, resp, &result)
	assert.Equal(t, "Not a travel query", result.Err)
}

func TestChat_MalformedBody(t *testing.T) {
	srv := newTestServer(t, okPlanner(t), &mockAssistant{
		handleFn: func(_ context.Context, _ string) assistant.ChatResult {
			t.Fatal("assistant must not be called for a malformed body")
			return assistant.ChatResult{}
		},
	}, nil)

	resp, err := http.Post(srv.URL+"/chat", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	cases := []struct {
		name   string
		pinger api.CachePinger
		want   string
	}{
		{"cache disabled", nil, "disabled"},
		{"cache reachable", &mockPinger{}, "ok"},
		{"cache unreachable", &mockPinger{err: fmt.Errorf("connection refused")}, "unavailable"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, okPlanner(t), nil, tc.pinger)

			resp, err := http.Get(srv.URL + "/health")
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode, "liveness never depends on the cache")

			var body map[string]string
			decodeBody(t, resp, &body)
			assert.Equal(t, "Travel Planner API", body["message"])
			assert.Equal(t, "online", body["status"])
			assert.Equal(t, tc.want, body["cache"])
		})
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	srv := newTestServer(t, okPlanner(t), nil, nil)

	resp, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
