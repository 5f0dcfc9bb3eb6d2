package catalog

import "fmt"

// ValidationError represents input rejected before any storage call, such as
// an empty title or a malformed watch URL.
type ValidationError struct {
	Field  string // The input field that failed validation
	Reason string // Human-readable explanation of the rejection
	Err    error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// SlugConflictError represents a caller-supplied slug that is already taken
// by another movie.
type SlugConflictError struct {
	Slug string // The slug that collided
}

func (e *SlugConflictError) Error() string {
	return fmt.Sprintf("slug %q is already in use", e.Slug)
}
