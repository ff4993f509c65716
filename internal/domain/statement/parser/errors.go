package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrFieldNotFound matches any *FieldNotFoundError via errors.Is.
	ErrFieldNotFound = errors.New("field not found")

	// ErrPageOutOfRange indicates the document has fewer pages than requested.
	ErrPageOutOfRange = errors.New("page out of range")

	// ErrInvalidServicePeriod indicates a service period ending before it starts.
	ErrInvalidServicePeriod = errors.New("service period ends before it starts")
)

// LoadError is returned when a statement cannot be opened or the requested
// page cannot be read.
type LoadError struct {
	Path string
	Page int
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s page %d: %v", e.Path, e.Page, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// FieldNotFoundError is returned when a required phrase has no match in the
// page text, or when a matched value cannot be parsed (Err set).
type FieldNotFoundError struct {
	Field   string
	Pattern string
	Err     error
}

func (e *FieldNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("field %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("field %s not found (pattern %q)", e.Field, e.Pattern)
}

func (e *FieldNotFoundError) Unwrap() error { return e.Err }

func (e *FieldNotFoundError) Is(target error) bool {
	return target == ErrFieldNotFound
}
