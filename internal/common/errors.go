// Package common defines sentinel errors shared by the client layers.
// Callers should use errors.Is to match these values; concrete failures
// wrap them with context via fmt.Errorf("...: %w", ...).
package common

import "errors"

var (
	// ErrAuthFailure covers rejected credentials and auth features that are
	// switched on but not implemented.
	ErrAuthFailure = errors.New("auth failure")

	// ErrStorageFailure marks read/write failures of the persisted session
	// store, including malformed stored data.
	ErrStorageFailure = errors.New("storage failure")

	// ErrValidationFailure marks rejected input.
	ErrValidationFailure = errors.New("validation failure")

	// ErrNotImplemented is returned by backends that exist only as a stub.
	ErrNotImplemented = errors.New("not implemented")
)
