// Package errors provides error types and utilities for dlcheck.
// It extends the standard errors package with link-verification sentinels,
// context wrapping and transport error classification.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Sentinel errors for common failure scenarios
var (
	// ErrTimeout indicates a probe exceeded its per-request time limit
	ErrTimeout = errors.New("operation timed out")

	// ErrConnectionFailed indicates a connection could not be established
	ErrConnectionFailed = errors.New("connection failed")

	// ErrInvalidInput indicates invalid input was provided
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidResponse indicates a response could not be read or was malformed
	ErrInvalidResponse = errors.New("invalid response")

	// ErrInterpretation indicates a provider verify function failed or panicked
	ErrInterpretation = errors.New("response interpretation failed")

	// ErrUnsupportedService indicates no provider matches a link host
	ErrUnsupportedService = errors.New("unsupported file service")

	// ErrRetriesExhausted indicates the retry budget reached zero
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrRedirectLimit indicates a provider redirect chain exceeded its bound
	ErrRedirectLimit = errors.New("provider redirect limit exceeded")

	// ErrInvalidPlugin indicates a plugin failed contract validation
	ErrInvalidPlugin = errors.New("invalid plugin")

	// ErrInputSource indicates the batch input could not be loaded
	ErrInputSource = errors.New("input source failed")

	// ErrInvalidConfig indicates the configuration could not be loaded
	ErrInvalidConfig = errors.New("invalid configuration")
)

// wrappedError wraps an error with additional context
type wrappedError struct {
	msg   string
	cause error
}

// Error implements the error interface
func (e *wrappedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Unwrap returns the underlying error
func (e *wrappedError) Unwrap() error {
	return e.cause
}

// Wrap wraps an error with additional context message.
// If err is nil, Wrap returns nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg:   msg,
		cause: err,
	}
}

// Wrapf wraps an error with a formatted context message.
// If err is nil, Wrapf returns nil.
//
// Example:
//
//	err := probe(url)
//	if err != nil {
//	    return errors.Wrapf(err, "probe %s", url)
//	}
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg:   fmt.Sprintf(format, args...),
		cause: err,
	}
}

// Mark attaches a sentinel to err so that errors.Is(result, sentinel) holds
// while the original cause stays reachable.
func Mark(err, sentinel error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around errors.Is from the standard library.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type.
// This is a convenience wrapper around errors.As from the standard library.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// New creates a new error with the given message.
func New(msg string) error {
	return errors.New(msg)
}

// Errorf formats according to a format specifier and returns the string as a value that satisfies error.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Join returns an error that wraps the given errors.
// Any nil error values are discarded.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Classify marks transport errors with ErrTimeout or ErrConnectionFailed.
// Errors that already carry one of those sentinels, and errors that are not
// network related, are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if IsTimeout(err) || IsConnectionFailed(err) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Mark(err, ErrTimeout)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Mark(err, ErrTimeout)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return Mark(err, ErrConnectionFailed)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return Mark(err, ErrConnectionFailed)
	}

	return err
}

// IsRetryable reports whether a failure should consume the retry budget:
// transport failures and interpretation failures are retryable, everything
// else (unsupported service, redirect limit, invalid input) is not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case Is(err, ErrUnsupportedService),
		Is(err, ErrRedirectLimit),
		Is(err, ErrInvalidInput),
		Is(err, context.Canceled):
		return false
	}
	return true
}

// IsTimeout reports whether the error is a timeout error
func IsTimeout(err error) bool {
	return Is(err, ErrTimeout)
}

// IsConnectionFailed reports whether the error is a connection failed error
func IsConnectionFailed(err error) bool {
	return Is(err, ErrConnectionFailed)
}

// IsInterpretation reports whether the error came from a provider verify function
func IsInterpretation(err error) bool {
	return Is(err, ErrInterpretation)
}

// IsUnsupportedService reports whether the error is an unsupported service error
func IsUnsupportedService(err error) bool {
	return Is(err, ErrUnsupportedService)
}

// IsInvalidPlugin reports whether the error is a plugin validation error
func IsInvalidPlugin(err error) bool {
	return Is(err, ErrInvalidPlugin)
}

// IsInvalidConfig reports whether the error is a configuration error
func IsInvalidConfig(err error) bool {
	return Is(err, ErrInvalidConfig)
}
