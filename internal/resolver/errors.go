package resolver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// RemoteFetchError reports a failed call to the item source. A resolve that
// hits one is abandoned as a whole.
type RemoteFetchError struct {
	Op         string
	ItemID     int
	StatusCode int
	Err        error
}

// The wrapped transport error already carries the status text.
func (e *RemoteFetchError) Error() string {
	return fmt.Sprintf("%s %d: %v", e.Op, e.ItemID, e.Err)
}

func (e *RemoteFetchError) Unwrap() error { return e.Err }

// httpStatuser is satisfied by transport errors that carry a response status.
type httpStatuser interface {
	HTTPStatus() int
}

func newRemoteFetchError(op string, id int, err error) *RemoteFetchError {
	e := &RemoteFetchError{Op: op, ItemID: id, Err: err}
	var hs httpStatuser
	if errors.As(err, &hs) {
		e.StatusCode = hs.HTTPStatus()
	}
	return e
}

// CycleDetected reports an item reached again below itself, or a traversal
// deeper than the configured bound.
type CycleDetected struct {
	ItemID int
	Path   []int
}

func (e *CycleDetected) Error() string {
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = strconv.Itoa(id)
	}
	return fmt.Sprintf("cycle detected at work item %d (path %s)", e.ItemID, strings.Join(parts, " -> "))
}
