package core

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when an operation is refused because another one is in flight.
	ErrBusy = errors.New("operation already in progress")
	// ErrExhausted is returned by load-more once every entry has been fetched.
	ErrExhausted = errors.New("no more entries to load")
	// ErrDeactivated is returned by controllers after their view was deactivated.
	ErrDeactivated = errors.New("controller deactivated")
	// ErrInvalidLimit is returned when a page limit is not positive.
	ErrInvalidLimit = errors.New("limit must be > 0")
	// ErrInvalidOffset is returned when a page offset is negative.
	ErrInvalidOffset = errors.New("offset must be >= 0")
)

// TransportError is the single failure kind surfaced by the remote client.
// Connectivity failures, non-success statuses and malformed payloads all map to it.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
