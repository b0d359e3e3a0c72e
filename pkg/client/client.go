// Package client provides the users API transport: a bounded-timeout GET
// against a base URL with optional API-key injection and a fixed-delay retry
// decorator.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultTimeout bounds a whole call, retries included.
	DefaultTimeout = 10 * time.Second

	// DefaultAPIKeyHeader is the header the API key is sent in.
	DefaultAPIKeyHeader = "x-api-key"

	// DefaultUserAgent identifies this client to the remote API.
	DefaultUserAgent = "raftlabs-users-client/1.0"
)

// Client performs GET requests against the users API.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the users API (REQUIRED, absolute), e.g. "https://reqres.in/api/".
	BaseURL string

	// Timeout for a whole call including retries (default 10s).
	Timeout time.Duration

	// APIKey is sent in APIKeyHeader when non-empty.
	APIKey       string
	APIKeyHeader string

	UserAgent string

	// Retry policy applied to every request.
	Retry RetryPolicy

	// Transport is the innermost round tripper (default http.DefaultTransport).
	Transport http.RoundTripper
}

// DefaultConfig returns a safe default configuration for baseURL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:      baseURL,
		Timeout:      DefaultTimeout,
		APIKeyHeader: DefaultAPIKeyHeader,
		UserAgent:    DefaultUserAgent,
		Retry:        DefaultRetryPolicy(),
	}
}

// Response is a fully read users API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsSuccess reports whether the status is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// New creates a new users API client. It fails when the base URL is missing
// or not an absolute URI.
func New(cfg Config) (*Client, error) {
	baseURL, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.APIKeyHeader == "" {
		cfg.APIKeyHeader = DefaultAPIKeyHeader
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryPolicy()
	}

	var transport http.RoundTripper = NewRetryTransport(cfg.Transport, cfg.Retry)
	if cfg.APIKey != "" {
		transport = &apiKeyTransport{next: transport, header: cfg.APIKeyHeader, key: cfg.APIKey}
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		baseURL: baseURL,
		config:  cfg,
		logger:  log.With().Str("component", "users-api-client").Logger(),
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: base url is required", ErrInvalidBaseURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an absolute uri", ErrInvalidBaseURL, raw)
	}
	// Relative references resolve under the base path only with a trailing slash.
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

// BaseURL returns the normalised base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Get performs a GET request for path relative to the base URL and reads the
// whole body. Non-success statuses are returned as a Response, not an error;
// only network failures, timeouts and cancellation return an error.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	target := c.baseURL.ResolveReference(ref)
	endpoint := "/" + strings.TrimPrefix(ref.Path, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	startTime := time.Now()
	defer func() {
		usersAPIRequestDuration.WithLabelValues(endpointLabel(endpoint)).Observe(time.Since(startTime).Seconds())
	}()

	c.logger.Debug().
		Str("url", target.String()).
		Msg("Executing users API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errClass := classifyError(err)
		usersAPIErrorsTotal.WithLabelValues(string(errClass)).Inc()
		usersAPIRequestsTotal.WithLabelValues(endpointLabel(endpoint), string(errClass)).Inc()
		c.logger.Error().
			Err(err).
			Str("url", target.String()).
			Str("error_class", string(errClass)).
			Msg("Users API request failed")
		return nil, fmt.Errorf("get %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errClass := classifyError(err)
		usersAPIErrorsTotal.WithLabelValues(string(errClass)).Inc()
		return nil, fmt.Errorf("read response body: %w", err)
	}

	usersAPIRequestsTotal.WithLabelValues(endpointLabel(endpoint), strconv.Itoa(resp.StatusCode)).Inc()
	if errClass := classifyStatus(resp.StatusCode); errClass != "" {
		usersAPIErrorsTotal.WithLabelValues(string(errClass)).Inc()
	}

	c.logger.Debug().
		Str("url", target.String()).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(startTime)).
		Msg("Users API request completed")

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// endpointLabel collapses numeric path segments so per-user lookups share a
// metric series.
func endpointLabel(endpoint string) string {
	segments := strings.Split(endpoint, "/")
	for i, s := range segments {
		if _, err := strconv.Atoi(s); err == nil {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}

// apiKeyTransport injects a static API key header into every request.
type apiKeyTransport struct {
	next   http.RoundTripper
	header string
	key    string
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(t.header, t.key)
	return t.next.RoundTrip(req)
}
