package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"voltaire/internal/trace"
)

const (
	// DefaultEndpoint is the public LanguageTool API.
	DefaultEndpoint = "https://api.languagetoolplus.com"
	// DefaultRatePerMinute matches the free tier limit of the public API.
	DefaultRatePerMinute = 20
	DefaultTimeout       = 15 * time.Second

	checkPath        = "/v2/check"
	maxResponseBytes = 8 << 20
	defaultUserAgent = "voltaire"
)

// Provider fetches raw check results for a request.
type Provider interface {
	Fetch(ctx context.Context, req Request) ([]byte, error)
}

// RetryConfig configures retries of failed check requests.
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		Multiplier:      2.0,
	}
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	Endpoint string
	Username string
	APIKey   string
	Timeout  time.Duration
	// RatePerMinute limits outgoing requests; negative disables the limit.
	RatePerMinute int
	Retry         *RetryConfig
	HTTPClient    *http.Client
	UserAgent     string
}

// Client talks to a LanguageTool-compatible /v2/check endpoint.
// It is safe for concurrent use.
type Client struct {
	endpoint   string
	username   string
	apiKey     string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      RetryConfig
}

// NewClient creates a client from opts.
func NewClient(opts Options) *Client {
	endpoint := strings.TrimRight(opts.Endpoint, "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	retry := DefaultRetryConfig()
	if opts.Retry != nil {
		retry = *opts.Retry
		retry.MaxRetries = max(retry.MaxRetries, 0)
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		endpoint:   endpoint,
		username:   opts.Username,
		apiKey:     opts.APIKey,
		userAgent:  userAgent,
		httpClient: httpClient,
		limiter:    newLimiter(opts.RatePerMinute),
		retry:      retry,
	}
}

func newLimiter(perMinute int) *rate.Limiter {
	switch {
	case perMinute < 0:
		return rate.NewLimiter(rate.Inf, 1)
	case perMinute == 0:
		perMinute = DefaultRatePerMinute
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// Endpoint returns the base URL requests are sent to.
func (c *Client) Endpoint() string { return c.endpoint }

// Account identifies the credentials requests are sent with, empty when
// anonymous. Premium accounts get a different rule set, so responses must not
// be shared across accounts. The API key itself is never part of it.
func (c *Client) Account() string {
	switch {
	case c.username == "" && c.apiKey == "":
		return ""
	case c.apiKey == "":
		return c.username
	default:
		return c.username + "+key"
	}
}

// Fetch posts req to the provider and returns the raw JSON body.
// Rate limiting applies to every attempt, including retries.
func (c *Client) Fetch(ctx context.Context, req Request) ([]byte, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}
	form := req.form()
	if c.username != "" && c.apiKey != "" {
		form.Set("username", c.username)
		form.Set("apiKey", c.apiKey)
	}
	payload := form.Encode()

	span, ctx := trace.Start(ctx, trace.ScopeRequest, "provider.fetch")
	var (
		lastErr  error
		attempts int
	)
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, c.retryDelay(attempt-1, lastErr)); err != nil {
				lastErr = err
				break
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			lastErr = fmt.Errorf("rate limit wait: %w", err)
			break
		}
		attempts++
		body, err := c.post(ctx, payload)
		if err == nil {
			span.Attempt(attempts).Status(http.StatusOK).End(fmt.Sprintf("%d bytes", len(body)))
			return body, nil
		}
		lastErr = err
		if !isRetryable(err) {
			break
		}
	}
	var apiErr *APIError
	if errors.As(lastErr, &apiErr) {
		span.Status(apiErr.Status)
	}
	span.Attempt(attempts).End(lastErr.Error())
	if attempts > 1 {
		return nil, fmt.Errorf("check failed after %d attempts: %w", attempts, lastErr)
	}
	return nil, fmt.Errorf("check failed: %w", lastErr)
}

func (c *Client) post(ctx context.Context, payload string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+checkPath, strings.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp, body)
	}
	return body, nil
}

// retryDelay prefers the server's Retry-After and otherwise backs off
// exponentially with jitter, capped at MaxInterval.
func (c *Client) retryDelay(attempt int, lastErr error) time.Duration {
	var apiErr *APIError
	if errors.As(lastErr, &apiErr) && apiErr.RetryAfter > 0 {
		return min(apiErr.RetryAfter, c.retry.MaxInterval)
	}
	delay := float64(c.retry.InitialInterval)
	for range attempt {
		delay *= c.retry.Multiplier
	}
	delay = min(delay, float64(c.retry.MaxInterval))
	// джиттер в диапазоне [0.75, 1.0) от задержки
	return time.Duration(delay*0.75 + rand.Float64()*delay*0.25)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
