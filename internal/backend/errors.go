package backend

import (
	"errors"
	"fmt"
)

// NetworkError means the request never produced a usable response.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// RejectedError means the backend answered with a non-2xx status.
type RejectedError struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *RejectedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: backend responded %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: backend responded %d", e.Op, e.StatusCode)
}

// IsNetworkFailure reports whether err wraps a *NetworkError.
func IsNetworkFailure(err error) bool {
	var target *NetworkError
	return errors.As(err, &target)
}

// IsRequestRejected reports whether err wraps a *RejectedError.
func IsRequestRejected(err error) bool {
	var target *RejectedError
	return errors.As(err, &target)
}
