package catalog

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrNotFound marks a catalog entity that does not (or no longer does) exist.
// It is always wrapped in a *RemoteError so callers can match either way.
var ErrNotFound = errors.New("catalog: not found")

// RemoteError describes a failed catalog API call. The workflow layer renders
// it as a single generic user-facing message; the detail is for logs only.
type RemoteError struct {
	Op     string
	Status int
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("catalog: %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("catalog: %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Code implements the error-code hook used by handler summary logging.
func (e *RemoteError) Code() string {
	if e.Status > 0 {
		return "remote_" + strconv.Itoa(e.Status)
	}
	return "remote"
}

func remoteErr(op string, status int, err error) *RemoteError {
	return &RemoteError{Op: op, Status: status, Err: err}
}

// IsRemote reports whether err originated from a catalog call failure.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
