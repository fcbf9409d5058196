package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// UpstreamError is returned when the completion service answers with a non-2xx
// status or the transport fails before a response arrives.
type UpstreamError struct {
	Provider   Provider
	StatusCode int
	Body       string
	Cause      error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s request failed with status %d: %s", e.Provider, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Cause)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// TimeoutError is returned when a completion call exceeds its deadline.
type TimeoutError struct {
	Provider Provider
	Timeout  time.Duration
	Cause    error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s request timed out after %s", e.Provider, e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// UnrecoverableFormatError is returned when no step of the recovery ladder yields
// valid JSON. Cause is the error from parsing the raw text unchanged.
type UnrecoverableFormatError struct {
	Raw   string
	Cause error
}

func (e *UnrecoverableFormatError) Error() string {
	return fmt.Sprintf("model output is not valid JSON: %v", e.Cause)
}

func (e *UnrecoverableFormatError) Unwrap() error {
	return e.Cause
}

// Excerpt returns at most n runes of the raw output.
func (e *UnrecoverableFormatError) Excerpt(n int) string {
	return Truncate(e.Raw, n)
}

// IsTimeout reports whether err is or wraps a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsUpstream reports whether err is or wraps an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// Truncate shortens s to n runes without splitting a multi-byte character.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// classifyCallError turns a transport failure into a TimeoutError when the call's
// own deadline expired and into an UpstreamError otherwise.
func classifyCallError(ctx context.Context, provider Provider, timeout time.Duration, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Provider: provider, Timeout: timeout, Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s request canceled: %w", provider, err)
	}
	return &UpstreamError{Provider: provider, Cause: err}
}
