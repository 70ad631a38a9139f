// Package jira implements the Jira Cloud REST v3 client used by the
// assistant: authenticated transport with rate-limit backoff, JQL search,
// multi-strategy project discovery, dynamic field resolution, and the
// write operations for groomed epics and stories.
package jira

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/backlogpilot/backlogpilot/internal/apierrors"
	"github.com/backlogpilot/backlogpilot/internal/backoff"
)

const (
	apiPrefix = "/rest/api/3"

	// maxRetries bounds rate-limit retries: a call makes at most
	// maxRetries+1 attempts before surfacing the 429.
	maxRetries = 4
)

// HTTPClient abstracts HTTP calls for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Observer receives transport outcomes. Implementations must be safe
// for concurrent use.
type Observer interface {
	ObserveRequest(method string, status int)
	ObserveRetry()
}

// Authenticator applies authentication to requests.
type Authenticator interface {
	Apply(req *http.Request) error
}

// BasicAuth implements Authenticator with email + API token. The header
// value is computed once at construction and never changes.
type BasicAuth struct {
	header string
}

// NewBasicAuth creates a basic-auth authenticator.
func NewBasicAuth(email, apiToken string) *BasicAuth {
	cred := base64.StdEncoding.EncodeToString([]byte(email + ":" + apiToken))
	return &BasicAuth{header: "Basic " + cred}
}

func (b *BasicAuth) Apply(req *http.Request) error {
	req.Header.Set("Authorization", b.header)
	return nil
}

// Config holds the credentials the client needs. All fields are required.
type Config struct {
	BaseURL  string
	Email    string
	APIToken string
}

// Client wraps the Jira REST API. Safe for concurrent use; the only
// mutable state is the memoized story-points field id (see fields.go).
type Client struct {
	baseURL    string
	httpClient HTTPClient
	auth       Authenticator
	policy     backoff.Policy
	observer   Observer
	logger     zerolog.Logger

	storyPoints fieldCache
}

// NewClient creates a new Jira API client. Missing credentials are a
// construction-time error naming every absent field.
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	var missing []string
	if cfg.BaseURL == "" {
		missing = append(missing, "base URL")
	}
	if cfg.Email == "" {
		missing = append(missing, "email")
	}
	if cfg.APIToken == "" {
		missing = append(missing, "API token")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: jira client missing %s", apierrors.ErrConfig, strings.Join(missing, ", "))
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		auth:       NewBasicAuth(cfg.Email, cfg.APIToken),
		policy:     backoff.DefaultPolicy(),
		logger:     logger.With().Str("component", "jira").Logger(),
	}, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(hc HTTPClient) {
	c.httpClient = hc
}

// SetBackoffPolicy overrides the rate-limit backoff policy (for testing).
func (c *Client) SetBackoffPolicy(p backoff.Policy) {
	c.policy = p
}

// SetObserver attaches a transport observer. Must be called before the
// client is shared across goroutines.
func (c *Client) SetObserver(o Observer) {
	c.observer = o
}

// BaseURL returns the base URL of the Jira instance.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do executes one logical API call to completion. It is the single choke
// point for networking: every other method builds on it. 429 responses
// are retried with capped exponential backoff, honoring Retry-After;
// 204/empty bodies yield a nil result; any other non-2xx status becomes
// an APIError carrying the status code and raw response body.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, headers map[string]string) (json.RawMessage, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
	}

	url := c.baseURL + apiPrefix + path

	for attempt := 0; ; attempt++ {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if err := c.auth.Apply(req); err != nil {
			return nil, fmt.Errorf("applying auth: %w", err)
		}
		// Caller overrides win over the defaults.
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("executing request: %w", err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("reading response body: %w", readErr)
		}

		if c.observer != nil {
			c.observer.ObserveRequest(method, resp.StatusCode)
		}

		if reqID := resp.Header.Get("X-Request-Id"); reqID != "" {
			// Diagnostic only; never affects control flow.
			c.logger.Debug().Str("request_id", reqID).Str("path", path).Msg("jira response")
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			if attempt >= maxRetries {
				return nil, &apierrors.APIError{
					Service:    "jira",
					StatusCode: resp.StatusCode,
					Message:    fmt.Sprintf("rate limited after %d attempts", attempt+1),
					Err:        apierrors.ErrRateLimit,
				}
			}
			if c.observer != nil {
				c.observer.ObserveRetry()
			}
			floor := parseRetryAfter(resp.Header.Get("Retry-After"))
			delay := c.policy.Delay(attempt, floor)
			c.logger.Warn().
				Int("attempt", attempt+1).
				Dur("delay", delay).
				Str("path", path).
				Msg("rate limited, backing off")
			if err := backoff.Sleep(ctx, delay); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, apierrors.NewAPIError("jira", resp.StatusCode, string(respBody))
		}

		if resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
			return nil, nil
		}
		return respBody, nil
	}
}

// parseRetryAfter converts a Retry-After header (delay seconds) into a
// duration. Unparseable or absent values mean no server-imposed floor.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// Myself returns the authenticated identity. A failure here means the
// credentials are bad, not that the tenant lacks data.
func (c *Client) Myself(ctx context.Context) (*User, error) {
	raw, err := c.do(ctx, http.MethodGet, "/myself", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apierrors.ErrAuthFailure, err)
	}
	var me User
	if err := json.Unmarshal(raw, &me); err != nil {
		return nil, fmt.Errorf("decoding identity: %w", err)
	}
	return &me, nil
}
