package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is matched by every ValidationError via errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError reports why a raw value was rejected. Value holds the
// rejected input verbatim and must not be echoed to HTTP clients.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%q is not a valid subscriber %s: %s", e.Value, e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidInput) hold for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
