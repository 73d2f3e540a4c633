package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"nbacap/ingestion/internal/clock"
	"nbacap/ingestion/internal/metrics"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Payload is a decoded JSON object returned by an upstream. Numbers are
// kept as json.Number so integer fields can be told apart from floats.
type Payload map[string]any

// Request describes a single GET against an upstream
type Request struct {
	Path   string
	Params map[string]string

	// Retries is the total number of attempts on retryable statuses.
	// Zero uses the client default.
	Retries int

	// BaseURL overrides the client's base URL when set
	BaseURL string
}

// CredentialSource supplies the API-key header for a request. It is
// consulted on every call so rotated keys are picked up without a restart.
type CredentialSource interface {
	Credential() (header, value string)
}

// StaticCredential is a fixed header/value pair, usually from config.Config
type StaticCredential struct {
	Header string
	Value  string
}

// Credential implements CredentialSource
func (c StaticCredential) Credential() (string, string) {
	return c.Header, c.Value
}

// EnvCredential reads the key from an environment variable on each call
type EnvCredential struct {
	Header   string
	Variable string
}

// Credential implements CredentialSource
func (c EnvCredential) Credential() (string, string) {
	return c.Header, os.Getenv(c.Variable)
}

// Options configures a Client
type Options struct {
	// Name labels logs, metrics and errors (e.g. "stats", "provider")
	Name       string
	BaseURL    string
	Credential CredentialSource
	Timeout    time.Duration

	// Retries is the default attempt count for retryable statuses
	Retries int

	// RateLimit is requests per second; zero disables pacing
	RateLimit float64
	Burst     int

	Sleeper    clock.Sleeper
	HTTPClient *http.Client
}

// Client is a minimal, stateless JSON-over-HTTP adapter for one upstream
type Client struct {
	name        string
	baseURL     string
	credential  CredentialSource
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	sleeper     clock.Sleeper
	retries     int
}

// NewClient creates a new upstream client
func NewClient(opts Options) *Client {
	if opts.Name == "" {
		opts.Name = "upstream"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Retries <= 0 {
		opts.Retries = 3
	}
	if opts.Sleeper == nil {
		opts.Sleeper = clock.Real{}
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		name:        opts.Name,
		baseURL:     opts.BaseURL,
		credential:  opts.Credential,
		httpClient:  httpClient,
		rateLimiter: limiter,
		sleeper:     opts.Sleeper,
		retries:     opts.Retries,
	}
}

// Name returns the upstream label
func (c *Client) Name() string {
	return c.name
}

// Request performs the GET and decodes the body as a JSON object
func (c *Client) Request(ctx context.Context, req Request) (Payload, error) {
	body, url, err := c.get(ctx, req)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload Payload
	if err := dec.Decode(&payload); err != nil {
		return nil, &TransportError{
			Upstream: c.name,
			URL:      url,
			Err:      fmt.Errorf("failed to decode response body: %w", err),
		}
	}

	return payload, nil
}

// GetJSON performs the GET and unmarshals the body into out
func (c *Client) GetJSON(ctx context.Context, req Request, out any) error {
	body, url, err := c.get(ctx, req)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{
			Upstream: c.name,
			URL:      url,
			Err:      fmt.Errorf("failed to decode response body: %w", err),
		}
	}

	return nil
}

// get issues the request, retrying the retryable status set with a linear
// 1+attempt second pause. Transport failures are returned immediately.
func (c *Client) get(ctx context.Context, req Request) ([]byte, string, error) {
	url := joinURL(c.baseURLFor(req), req.Path)

	attempts := req.Retries
	if attempts <= 0 {
		attempts = c.retries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if c.rateLimiter != nil {
			// A wait that cannot finish before the deadline is a local timeout
			if err := c.rateLimiter.Wait(ctx); err != nil {
				return nil, url, &TransportError{
					Upstream: c.name,
					URL:      url,
					Err:      fmt.Errorf("rate limiter: %w", err),
				}
			}
		}

		start := time.Now()
		body, status, err := c.do(ctx, url, req.Params)
		duration := time.Since(start).Seconds()

		if err != nil {
			metrics.RecordAPICall(c.name, req.Path, "transport_error", duration)
			log.Debug().
				Err(err).
				Str("upstream", c.name).
				Str("url", url).
				Int("attempt", attempt+1).
				Msg("Upstream transport failure")
			return nil, url, &TransportError{Upstream: c.name, URL: url, Err: err}
		}

		metrics.RecordAPICall(c.name, req.Path, strconv.Itoa(status), duration)

		if status >= 200 && status < 300 {
			log.Debug().
				Str("upstream", c.name).
				Str("url", url).
				Int("status", status).
				Int("size", len(body)).
				Msg("API request successful")
			return body, url, nil
		}

		lastErr = &StatusError{Upstream: c.name, URL: url, Status: status, Body: truncateBody(body)}

		if !isRetryableStatus(status) {
			return nil, url, lastErr
		}

		if attempt+1 >= attempts {
			break
		}

		backoff := time.Duration(1+attempt) * time.Second
		metrics.RecordAPIRetry(c.name, status)
		log.Warn().
			Str("upstream", c.name).
			Str("url", url).
			Int("status", status).
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Msg("Received retryable status, will retry")

		if err := c.sleeper.Sleep(ctx, backoff); err != nil {
			return nil, url, err
		}
	}

	return nil, url, lastErr
}

// do performs one HTTP round trip
func (c *Client) do(ctx context.Context, url string, params map[string]string) ([]byte, int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "nbacap-ingestion/1.0")
	if c.credential != nil {
		if header, value := c.credential.Credential(); header != "" && value != "" {
			httpReq.Header.Set(header, value)
		}
	}

	if len(params) > 0 {
		q := httpReq.URL.Query()
		for key, value := range params {
			q.Set(key, value)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, resp.StatusCode, nil
}

func (c *Client) baseURLFor(req Request) string {
	if req.BaseURL != "" {
		return req.BaseURL
	}
	return c.baseURL
}

func joinURL(base, path string) string {
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
