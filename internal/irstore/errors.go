package irstore

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Load when no document exists for an id.
var ErrNotFound = errors.New("ir document not found")

// PersistenceError reports a document that could not be read or written.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
