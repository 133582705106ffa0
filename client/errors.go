package client

import (
	"fmt"
	"time"
)

// TransportError means the request could not be completed at the network level, for
// instance because of a DNS or connection failure. It always indicates a problem with the
// environment rather than with the service's behavior.
type TransportError struct {
	Method Method
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error for %s %s: %s", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// TimeoutError means the service did not respond within the configured ceiling.
type TimeoutError struct {
	Method  Method
	URL     string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s %s timed out after %s", e.Method, e.URL, e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}
