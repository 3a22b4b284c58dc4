package mws

import "errors"

var (
	// ErrInvalidRegion is returned by NewClient for an unknown region code.
	ErrInvalidRegion = errors.New("invalid region code")

	// ErrMissingCredentials is returned by NewClient when a key is empty.
	ErrMissingCredentials = errors.New("access key and secret key are required")

	// ErrInternalServerError marks a 500 response under the throttle policy.
	ErrInternalServerError = errors.New("InternalServerError")

	// ErrServiceUnavailable marks a 503 response under the throttle policy.
	ErrServiceUnavailable = errors.New("ServiceUnavailable or RequestThrottled")

	// ErrElementNotFound is returned by Response.GetElement when nothing matches.
	ErrElementNotFound = errors.New("element not found")
)

// FatalError is returned once a request can no longer be retried. Its
// message is the message of the last cause.
type FatalError struct {
	Attempts int
	Err      error
}

func (e *FatalError) Error() string {
	return e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}
