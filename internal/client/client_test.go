package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"nbacap/ingestion/internal/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string, sleeper clock.Sleeper) *Client {
	return NewClient(Options{
		Name:       "stats",
		BaseURL:    baseURL,
		Credential: StaticCredential{Header: "X-Api-Key", Value: "secret"},
		Timeout:    2 * time.Second,
		Retries:    3,
		Sleeper:    sleeper,
	})
}

func TestRequest_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/querytool/game/team", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "0022400001,0022400002", r.URL.Query().Get("GameId"))
		assert.Equal(t, "5000", r.URL.Query().Get("MaxRowsReturned"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"teams":[{"teamId":1610612737}],"meta":{"rowsReturned":1}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, &clock.Recorder{})
	payload, err := c.Request(context.Background(), Request{
		Path: "/api/querytool/game/team",
		Params: map[string]string{
			"GameId":          "0022400001,0022400002",
			"MaxRowsReturned": "5000",
		},
	})
	require.NoError(t, err)

	teams, ok := payload["teams"].([]any)
	require.True(t, ok)
	require.Len(t, teams, 1)

	meta := payload["meta"].(map[string]any)
	assert.Equal(t, json.Number("1"), meta["rowsReturned"])
}

func TestRequest_RetriesRetryableStatusThenSucceeds(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	sleeper := &clock.Recorder{}
	c := newTestClient(server.URL, sleeper)

	payload, err := c.Request(context.Background(), Request{Path: "/x"})
	require.NoError(t, err)
	assert.Equal(t, true, payload["ok"])
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeper.Durations())
}

func TestRequest_RetriesExhausted(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("overloaded"))
	}))
	defer server.Close()

	sleeper := &clock.Recorder{}
	c := newTestClient(server.URL, sleeper)

	_, err := c.Request(context.Background(), Request{Path: "/x", Retries: 2})
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, []time.Duration{time.Second}, sleeper.Durations())

	status, ok := StatusCode(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, err.Error(), "overloaded")
}

func TestRequest_NonRetryableStatusFailsImmediately(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusRequestURITooLong)
	}))
	defer server.Close()

	sleeper := &clock.Recorder{}
	c := newTestClient(server.URL, sleeper)

	_, err := c.Request(context.Background(), Request{Path: "/x"})
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusRequestURITooLong))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Empty(t, sleeper.Durations())
}

func TestRequest_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := newTestClient(url, &clock.Recorder{})
	_, err := c.Request(context.Background(), Request{Path: "/x"})
	require.Error(t, err)
	assert.True(t, IsTransport(err))

	_, isStatus := StatusCode(err)
	assert.False(t, isStatus)
}

func TestRequest_InvalidJSONIsTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer server.Close()

	c := newTestClient(server.URL, &clock.Recorder{})
	_, err := c.Request(context.Background(), Request{Path: "/x"})
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestRequest_RateLimitWaitPastDeadlineIsTransportFailure(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewClient(Options{
		Name:      "stats",
		BaseURL:   server.URL,
		RateLimit: 0.01,
		Burst:     1,
		Sleeper:   &clock.Recorder{},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := c.Request(ctx, Request{Path: "/x"})
	require.NoError(t, err)

	_, err = c.Request(ctx, Request{Path: "/x"})
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.NoError(t, ctx.Err())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRequest_BaseURLOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/teams", r.URL.Path)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient("http://127.0.0.1:1", &clock.Recorder{})
	_, err := c.Request(context.Background(), Request{Path: "teams", BaseURL: server.URL + "/v2/"})
	require.NoError(t, err)
}

func TestEnvCredential_ReadOnEveryCall(t *testing.T) {
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("X-Api-Key"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewClient(Options{
		Name:       "stats",
		BaseURL:    server.URL,
		Credential: EnvCredential{Header: "X-Api-Key", Variable: "NBACAP_TEST_KEY"},
		Sleeper:    &clock.Recorder{},
	})

	t.Setenv("NBACAP_TEST_KEY", "first")
	_, err := c.Request(context.Background(), Request{Path: "/x"})
	require.NoError(t, err)

	t.Setenv("NBACAP_TEST_KEY", "rotated")
	_, err = c.Request(context.Background(), Request{Path: "/x"})
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "rotated"}, seen)
}

func TestGetJSON_DecodesArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"PlayerID":1},{"PlayerID":2}]`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, &clock.Recorder{})

	var out []struct {
		PlayerID int `json:"PlayerID"`
	}
	require.NoError(t, c.GetJSON(context.Background(), Request{Path: "/players"}, &out))
	assert.Len(t, out, 2)
	assert.Equal(t, 2, out[1].PlayerID)
}
