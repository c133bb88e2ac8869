package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrEmptyText is returned for text that has nothing to check.
	ErrEmptyText = errors.New("nothing to check: text is empty")
	// ErrMalformedResponse wraps responses that are not a LanguageTool check result.
	ErrMalformedResponse = errors.New("malformed provider response")
)

// APIError is a non-2xx answer from the provider.
type APIError struct {
	Status     int
	Message    string
	Retryable  bool
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("languagetool: HTTP %d: %s", e.Status, e.Message)
}

const maxErrorBody = 500

func newAPIError(resp *http.Response, body []byte) *APIError {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody] + "..."
	}
	if msg == "" {
		msg = resp.Status
	}
	return &APIError{
		Status:     resp.StatusCode,
		Message:    msg,
		Retryable:  resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
	}
}

// isRetryable reports whether another attempt may succeed.
// Network errors are retried, cancellations are not.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable
	}
	return true
}

// parseRetryAfter parses the Retry-After header (seconds or HTTP date).
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return max(time.Until(t), 0)
	}
	return 0
}
