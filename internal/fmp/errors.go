package fmp

import "fmt"

// AuthError is returned when the API rejects the key (401/403). It is fatal for a run.
type AuthError struct {
	Symbol     string
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for %s: status %d", e.Symbol, e.StatusCode)
}

// RateLimitError is returned on 429
type RateLimitError struct {
	Symbol     string
	RetryAfter string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter != "" {
		return fmt.Sprintf("rate limited fetching %s (retry after %s)", e.Symbol, e.RetryAfter)
	}
	return fmt.Sprintf("rate limited fetching %s", e.Symbol)
}

// TransientNetworkError covers connection failures, timeouts and 5xx responses
type TransientNetworkError struct {
	Symbol     string
	StatusCode int
	Err        error
}

func (e *TransientNetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("network error fetching %s: %v", e.Symbol, e.Err)
	}
	return fmt.Sprintf("upstream unavailable fetching %s: status %d", e.Symbol, e.StatusCode)
}

func (e *TransientNetworkError) Unwrap() error { return e.Err }

// StatusError is returned for any other unexpected non-2xx response
type StatusError struct {
	Symbol     string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code fetching %s: %d", e.Symbol, e.StatusCode)
}

// ParseError is returned when the body is not the expected JSON shape.
// Payload holds the raw body, truncated to maxPayload bytes.
type ParseError struct {
	Symbol  string
	Payload string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse response for %s: %v", e.Symbol, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

const maxPayload = 2048

func truncate(b []byte) string {
	if len(b) > maxPayload {
		return string(b[:maxPayload]) + "..."
	}
	return string(b)
}
