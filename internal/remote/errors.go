package remote

import (
	"errors"
	"fmt"
)

// ErrOffline indicates the backend could not be reached at all: DNS
// failure, connection refused, or timeout. Server-side failures (an HTTP
// response with an error status) are not offline.
//
// Use errors.Is to detect it through a RequestError:
//
//	if errors.Is(err, remote.ErrOffline) {
//	    // skip sync, stay on local data
//	}
var ErrOffline = errors.New("remote service unreachable")

// RequestError describes a failed request against the backend. Status is
// the HTTP status code, or 0 when no response arrived.
type RequestError struct {
	Op     string
	Path   string
	Status int
	Err    error
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("failed to %s (status %d): %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
