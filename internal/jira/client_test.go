package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backlogpilot/backlogpilot/internal/apierrors"
	"github.com/backlogpilot/backlogpilot/internal/backoff"
)

func testConfig(baseURL string) Config {
	return Config{BaseURL: baseURL, Email: "pm@example.com", APIToken: "token123"}
}

func setupTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(testConfig(server.URL), zerolog.Nop())
	require.NoError(t, err)
	client.SetHTTPClient(server.Client())
	client.SetBackoffPolicy(backoff.Policy{BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond})
	return client, server
}

func TestNewClient_MissingCredentials(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "https://example.atlassian.net"}, zerolog.Nop())
	require.Error(t, err)
	assert.ErrorIs(t, err, apierrors.ErrConfig)
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "API token")
	assert.NotContains(t, err.Error(), "base URL")
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	client, err := NewClient(testConfig("https://example.atlassian.net/"), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "https://example.atlassian.net", client.BaseURL())
}

func TestBasicAuth_Apply(t *testing.T) {
	auth := NewBasicAuth("user@example.com", "token123")
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, auth.Apply(req))
	// base64("user@example.com:token123")
	assert.Equal(t, "Basic dXNlckBleGFtcGxlLmNvbTp0b2tlbjEyMw==", req.Header.Get("Authorization"))
}

func TestDo_AttachesStandardHeaders(t *testing.T) {
	var got http.Header
	client, _ := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{}`))
	})

	_, err := client.do(context.Background(), http.MethodGet, "/myself", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Contains(t, got.Get("Authorization"), "Basic ")
}

func TestDo_CallerHeaderOverridesWin(t *testing.T) {
	var got string
	client, _ := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Accept")
		w.Write([]byte(`{}`))
	})

	_, err := client.do(context.Background(), http.MethodGet, "/field", nil,
		map[string]string{"Accept": "application/vnd.custom+json"})
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.custom+json", got)
}

func TestDo_NoContentYieldsEmptySentinel(t *testing.T) {
	client, _ := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	raw, err := client.do(context.Background(), http.MethodPut, "/version/10000", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestDo_ErrorCarriesStatusAndBody(t *testing.T) {
	client, _ := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"errorMessages":["No permission"]}`))
	})

	_, err := client.do(context.Background(), http.MethodGet, "/project", nil, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apierrors.StatusOf(err))
	assert.Contains(t, err.Error(), "No permission")
}

func TestDo_RetriesRateLimitThenSucceeds(t *testing.T) {
	calls := 0
	var timestamps []time.Time
	client, _ := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		timestamps = append(timestamps, time.Now())
		if calls <= 3 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"accountId":"abc"}`))
	})

	raw, err := client.do(context.Background(), http.MethodGet, "/myself", nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, raw)
	assert.Equal(t, 4, calls)

	// Backoff delays are non-decreasing across attempts.
	var prev time.Duration
	for i := 1; i < len(timestamps); i++ {
		gap := timestamps[i].Sub(timestamps[i-1])
		assert.GreaterOrEqual(t, gap+time.Millisecond, prev)
		prev = gap
	}
}

type countingObserver struct {
	requests int
	retries  int
}

func (o *countingObserver) ObserveRequest(string, int) { o.requests++ }
func (o *countingObserver) ObserveRetry()              { o.retries++ }

func TestDo_ObserverSeesRequestsAndRetries(t *testing.T) {
	calls := 0
	client, _ := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{}`))
	})
	obs := &countingObserver{}
	client.SetObserver(obs)

	_, err := client.do(context.Background(), http.MethodGet, "/myself", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, obs.requests)
	assert.Equal(t, 1, obs.retries)
}

func TestDo_RateLimitExhaustion(t *testing.T) {
	calls := 0
	client, _ := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.do(context.Background(), http.MethodGet, "/myself", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apierrors.ErrRateLimit)
	assert.Equal(t, maxRetries+1, calls)
}

func TestDo_RetryAfterActsAsFloor(t *testing.T) {
	calls := 0
	var gap time.Duration
	var last time.Time
	client, _ := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			last = time.Now()
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		gap = time.Since(last)
		w.Write([]byte(`{}`))
	})

	_, err := client.do(context.Background(), http.MethodGet, "/myself", nil, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, gap, time.Second)
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 3*time.Second, parseRetryAfter("3"))
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon"))
	assert.Equal(t, time.Duration(0), parseRetryAfter("-5"))
}

func TestMyself(t *testing.T) {
	client, _ := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/3/myself", r.URL.Path)
		json.NewEncoder(w).Encode(User{AccountID: "abc123", DisplayName: "PM Bot"})
	})

	me, err := client.Myself(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc123", me.AccountID)
}

func TestMyself_FailureIsAuthError(t *testing.T) {
	client, _ := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Myself(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apierrors.ErrAuthFailure)
}
