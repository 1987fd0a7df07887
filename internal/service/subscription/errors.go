package subscription

import (
	"errors"
	"fmt"
)

// ErrStorage is matched by every StorageError via errors.Is.
var ErrStorage = errors.New("subscription storage failure")

// StorageError carries a persistence failure unchanged. Class is a coarse
// category for logs and spans (connectivity, timeout, constraint,
// canceled, unknown).
type StorageError struct {
	Op    string
	Class string
	Err   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }
