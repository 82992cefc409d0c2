package gemini

import (
	"fmt"
	"time"
)

// DefaultRetryAfter is reported when the server rate-limits a request without
// supplying a RetryInfo hint.
const DefaultRetryAfter = 30 * time.Second

// AuthError means the API credential is missing or rejected. It is a
// configuration problem: retrying cannot help, and the message is meant to be
// shown to the operator as-is.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("gemini auth error: %s", e.Reason)
}

// RateLimitError means the service answered 429. RetryAfter carries the
// server's retry-delay hint unchanged; HintPresent records whether the server
// actually sent one or RetryAfter is just DefaultRetryAfter.
type RateLimitError struct {
	RetryAfter  time.Duration
	HintPresent bool
	Message     string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("gemini rate limited, retry after %s: %s", e.RetryAfter, e.Message)
}

// TransientError covers connection failures, timeouts and 5xx responses.
// Callers may retry a bounded number of times with backoff.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("gemini transient error: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// MalformedError means the service answered, but the content could not be
// decoded into the requested shape. Raw preserves the response text verbatim
// so callers can fall back to treating it as an opaque message.
type MalformedError struct {
	Raw string
	Err error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("gemini malformed response: %v", e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}
