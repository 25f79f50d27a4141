package restsource

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument reports insufficient or malformed operation arguments.
// It is always returned before any network call is made.
var ErrInvalidArgument = errors.New("invalid argument")

var (
	errMissingRequestInfo = fmt.Errorf("%w: missing request information", ErrInvalidArgument)
	errMissingAction      = fmt.Errorf("%w: missing action", ErrInvalidArgument)
)

// TransportError wraps a failure returned by the HTTP client.
type TransportError struct {
	Verb Verb
	URL  string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Verb, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
