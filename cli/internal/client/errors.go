package client

import (
	"errors"
	"fmt"
)

// ErrRequestFailed is the single failure kind of the transport. HTTP error
// statuses, network failures and malformed bodies all match it with errors.Is.
var ErrRequestFailed = errors.New("request failed")

// errUnsuccessfulStatus deliberately carries no status code or body.
var errUnsuccessfulStatus = errors.New("unsuccessful response status")

var errMalformedBody = errors.New("response body is not valid JSON")

// RequestError describes a failed call. Cause keeps the raw underlying error.
type RequestError struct {
	Method   string
	Endpoint string
	Cause    error
}

func (e *RequestError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("request failed: %s %s", e.Method, e.Endpoint)
	}
	return fmt.Sprintf("request failed: %s %s: %v", e.Method, e.Endpoint, e.Cause)
}

func (e *RequestError) Unwrap() error { return e.Cause }

func (e *RequestError) Is(target error) bool { return target == ErrRequestFailed }
