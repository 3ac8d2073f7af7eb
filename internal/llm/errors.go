package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ProviderErrorKind classifies external backend failures.
type ProviderErrorKind string

const (
	// ErrKindUnreachable covers connection failures, timeouts, and
	// HTTP-layer breakage.
	ErrKindUnreachable ProviderErrorKind = "unreachable"
	// ErrKindAuthFailure covers missing or rejected credentials.
	ErrKindAuthFailure ProviderErrorKind = "auth_failure"
	// ErrKindRateLimited covers 429-class responses; the only kind the
	// orchestrator retries.
	ErrKindRateLimited ProviderErrorKind = "rate_limited"
	// ErrKindInvalidResponse covers responses that do not parse into the
	// expected shape. Never retried: it indicates a contract break.
	ErrKindInvalidResponse ProviderErrorKind = "invalid_response"
)

// ProviderError is the error type surfaced by all providers.
type ProviderError struct {
	Kind    ProviderErrorKind
	Backend Backend
	Err     error
	Hint    string // actionable advice for the operator, optional
	Snippet string // raw response excerpt for invalid-response diagnosis
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s provider: %s", e.Backend, e.Kind)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Snippet != "" {
		msg = fmt.Sprintf("%s (response: %s)", msg, e.Snippet)
	}
	if e.Hint != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Hint)
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsProviderError reports whether err is (or wraps) a ProviderError.
func IsProviderError(err error) bool {
	var providerErr *ProviderError
	return errors.As(err, &providerErr)
}

// ProviderErrorOfKind reports whether err is a ProviderError of the given kind.
func ProviderErrorOfKind(err error, kind ProviderErrorKind) bool {
	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		return false
	}
	return providerErr.Kind == kind
}

const snippetLimit = 200

// responseSnippet truncates a raw response body for error messages.
func responseSnippet(body []byte) string {
	snippet := strings.TrimSpace(string(body))
	if len(snippet) > snippetLimit {
		snippet = snippet[:snippetLimit] + "..."
	}
	return snippet
}

// classifyTransportError maps an HTTP round-trip failure to a ProviderError.
// Timeouts and connection failures both land on Unreachable so the CLI never
// hangs without a categorized outcome.
func classifyTransportError(backend Backend, err error, hint string) *ProviderError {
	wrapped := &ProviderError{Kind: ErrKindUnreachable, Backend: backend, Err: err}

	if errors.Is(err, context.DeadlineExceeded) {
		wrapped.Hint = "request timed out"
		return wrapped
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		wrapped.Hint = "request timed out"
		return wrapped
	}

	if strings.Contains(strings.ToLower(err.Error()), "connection refused") && hint != "" {
		wrapped.Hint = hint
	}
	return wrapped
}

// classifyHTTPStatus maps a non-2xx response to a ProviderError.
func classifyHTTPStatus(backend Backend, statusCode int, body []byte) *ProviderError {
	snippet := responseSnippet(body)

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &ProviderError{
			Kind:    ErrKindAuthFailure,
			Backend: backend,
			Err:     fmt.Errorf("HTTP %d", statusCode),
			Hint:    "check your API key",
			Snippet: snippet,
		}
	case statusCode == http.StatusTooManyRequests:
		return &ProviderError{
			Kind:    ErrKindRateLimited,
			Backend: backend,
			Err:     fmt.Errorf("HTTP %d", statusCode),
			Snippet: snippet,
		}
	default:
		return &ProviderError{
			Kind:    ErrKindUnreachable,
			Backend: backend,
			Err:     fmt.Errorf("HTTP %d", statusCode),
			Snippet: snippet,
		}
	}
}
