package noaa

import (
	"errors"
	"fmt"
)

// ErrTimeout marks an upstream call that ran out of time. It is safe to retry.
var ErrTimeout = errors.New("request timed out")

// ApiError is NOAA rejecting a request, e.g. an unknown station or one without tide
// predictions. Message is the upstream text and is meant to be shown as is.
type ApiError struct {
	Station string
	Message string
}

func (e *ApiError) Error() string {
	return e.Message
}

// StatusError is a non-200 response from a NOAA endpoint.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %s", e.Endpoint, e.Status)
}

// Temporary reports whether the request may succeed if retried.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// StationParseError means a station page did not have the expected structure.
type StationParseError struct {
	ID     string
	Reason string
}

func (e *StationParseError) Error() string {
	return fmt.Sprintf("station %s: %s", e.ID, e.Reason)
}
