package coco

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput marks a prediction document whose top level is neither
	// a list of records nor an object holding an "annotations" list.
	ErrMalformedInput = errors.New("malformed prediction document")
	// ErrNoResults reports that every record was filtered or dropped. Callers
	// must not write an output document when they see it.
	ErrNoResults = errors.New("no valid detections found after conversion")
	// ErrInvalidValue marks a field value that cannot be coerced to the type
	// the results schema requires.
	ErrInvalidValue = errors.New("invalid value")
)

// MalformedInputError describes the rejected top-level shape.
type MalformedInputError struct {
	// Kind is the JSON kind found at the top level (or under "annotations").
	Kind   string
	Detail string
}

func (e *MalformedInputError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (found %s)", ErrMalformedInput, e.Detail, e.Kind)
	}
	return fmt.Sprintf("%s: found %s", ErrMalformedInput, e.Kind)
}

func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}
