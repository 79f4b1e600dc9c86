// Package errors provides error handling for ypgen.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Marking errors with sentinels that survive wrapping
//
// Usage:
//
//	// Wrap with context
//	if err := store.SavePage(ctx, title, text, summary); err != nil {
//	    return errors.Wrapf(err, "failed to save %s", title)
//	}
//
//	// Classify an error without losing its message
//	return errors.Mark(err, errors.ErrStoreRead)
//
//	// Check errors
//	if errors.Is(err, errors.ErrUnauthorized) {
//	    // abort the batch
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Common sentinel errors for use across ypgen.
// Use these with errors.Is() for type-safe error checking.
// Use errors.Mark() to classify a foreign error while keeping its message.
var (
	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = New("not found")

	// ErrInvalidRequest indicates the request was malformed or invalid
	ErrInvalidRequest = New("invalid request")

	// ErrUnauthorized indicates the content store rejected our session
	ErrUnauthorized = New("unauthorized")

	// ErrNotImplemented indicates a target has no generation logic of its own
	ErrNotImplemented = New("not implemented")

	// ErrStoreRead indicates a page could not be read (distinct from a missing page)
	ErrStoreRead = New("store read failed")

	// ErrStoreWrite indicates a page could not be saved
	ErrStoreWrite = New("store write failed")
)

// IsUnauthorized checks if an error is or wraps ErrUnauthorized
func IsUnauthorized(err error) bool {
	return err != nil && Is(err, ErrUnauthorized)
}

// IsNotImplemented checks if an error is or wraps ErrNotImplemented
func IsNotImplemented(err error) bool {
	return err != nil && Is(err, ErrNotImplemented)
}

// IsInvalidRequestError checks if an error is or wraps ErrInvalidRequest
func IsInvalidRequestError(err error) bool {
	return err != nil && Is(err, ErrInvalidRequest)
}

// NewNotImplementedError creates a not-implemented error with a formatted message
func NewNotImplementedError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrNotImplemented)
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrInvalidRequest)
}

// NewUnauthorizedError creates an unauthorized error with a formatted message
func NewUnauthorizedError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrUnauthorized)
}
