package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownStrategy means the requested strategy name is not registered.
	ErrUnknownStrategy = errors.New("unknown strategy")
	// ErrMissingConfigSection means the strategy config document has no
	// section for the requested environment.
	ErrMissingConfigSection = errors.New("missing config section")
	// ErrStaleState means a guarded strategy-state write lost the version
	// race to a concurrent writer.
	ErrStaleState = errors.New("stale strategy state")
)
