// Package apperrors defines the error kinds surfaced to callers.
// Every error returned by the domain wraps exactly one of these sentinels,
// so transports classify with errors.Is.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or missing input, rejected before any mutation.
	ErrValidation = errors.New("validation failed")
	// ErrInsufficientFunds marks a debit larger than the balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrNotFound marks a referenced user, line or withdrawal that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyProcessed marks double resolves, double approvals and reused transaction ids.
	ErrAlreadyProcessed = errors.New("already processed")
	// ErrUpstreamUnavailable marks a failed or timed out external lookup.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrUnauthorized marks failed credentials or a missing identity.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden marks an authenticated caller acting outside their rights.
	ErrForbidden = errors.New("forbidden")
)

func Validation(format string, args ...any) error {
	return wrap(ErrValidation, format, args...)
}

func InsufficientFunds(format string, args ...any) error {
	return wrap(ErrInsufficientFunds, format, args...)
}

func NotFound(format string, args ...any) error {
	return wrap(ErrNotFound, format, args...)
}

func AlreadyProcessed(format string, args ...any) error {
	return wrap(ErrAlreadyProcessed, format, args...)
}

func Unauthorized(format string, args ...any) error {
	return wrap(ErrUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) error {
	return wrap(ErrForbidden, format, args...)
}

// Upstream wraps cause as ErrUpstreamUnavailable while keeping it inspectable.
func Upstream(cause error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrUpstreamUnavailable, msg)
	}
	return fmt.Errorf("%w: %s: %w", ErrUpstreamUnavailable, msg, cause)
}

// Kind returns the sentinel err wraps, or nil for unclassified errors.
func Kind(err error) error {
	for _, kind := range []error{
		ErrValidation,
		ErrInsufficientFunds,
		ErrNotFound,
		ErrAlreadyProcessed,
		ErrUpstreamUnavailable,
		ErrUnauthorized,
		ErrForbidden,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

func wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
