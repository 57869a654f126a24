package recording

import (
	"fmt"
	"io/fs"
)

// NotFoundError is returned when the archive path does not exist.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("recording not found: %s", e.Path)
}

// Unwrap lets errors.Is(err, fs.ErrNotExist) match.
func (e *NotFoundError) Unwrap() error {
	if e.Err == nil {
		return fs.ErrNotExist
	}
	return e.Err
}

// MissingFieldError is returned when a required named array is absent.
type MissingFieldError struct {
	Path  string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required array %q", e.Path, e.Field)
}

// ShapeMismatchError is returned when an array violates the recording layout.
type ShapeMismatchError struct {
	Path   string
	Field  string
	Shape  []int
	Reason string
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: array %q with shape %v: %s", e.Path, e.Field, e.Shape, e.Reason)
}
