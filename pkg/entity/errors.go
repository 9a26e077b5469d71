package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEntity is returned when an entity is constructed without an id.
	ErrInvalidEntity = errors.New("tried to create entity without id")

	// ErrMissingReferenceID is returned when an embedded reference lacks its id.
	ErrMissingReferenceID = errors.New("embedded reference has no id")
)

// ReferenceError attributes a reference resolution failure to the parent
// entity whose construction triggered it.
type ReferenceError struct {
	Parent Ref
	Field  string
	Err    error
}

// Error implements the error interface.
func (e *ReferenceError) Error() string {
	return fmt.Sprintf("resolve %s.%s: %v", e.Parent, e.Field, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ReferenceError) Unwrap() error {
	return e.Err
}
