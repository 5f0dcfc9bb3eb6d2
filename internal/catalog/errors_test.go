package catalog

import (
	"errors"
	"fmt"
	"testing"
)

// TestValidationError_Error verifies error message formatting
func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Field:  "title",
		Reason: "must not be empty",
	}

	expected := "invalid title: must not be empty"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

// TestValidationError_Unwrap verifies error chain traversal
func TestValidationError_Unwrap(t *testing.T) {
	cause := errors.New("underlying cause")
	err := &ValidationError{
		Field:  "watchUrl",
		Reason: "malformed",
		Err:    cause,
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	wrapped := fmt.Errorf("context: %w", err)
	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is() should find cause in wrapped chain")
	}
}

// TestSlugConflictError_Error verifies error message formatting
func TestSlugConflictError_Error(t *testing.T) {
	err := &SlugConflictError{Slug: "test-film"}

	expected := `slug "test-film" is already in use`
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}
