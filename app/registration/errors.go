package registration

import (
	"errors"
	"fmt"
)

// Failure kinds of a registration run. All of them are terminal.
var (
	ErrMissingIdentity    = errors.New("missing identity")
	ErrBackendUnreachable = errors.New("backend unreachable")
	ErrBackendRejected    = errors.New("backend rejected")
	ErrMalformedResponse  = errors.New("malformed response")

	// ErrRunInProgress is returned when Run is entered while a request is pending.
	ErrRunInProgress = errors.New("registration already in flight")
)

// Error carries the failure kind, the HTTP status when there was one, and the cause.
type Error struct {
	Kind   error
	Status int
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Status != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Code is picked up by the router's err_code log attribute.
func (e *Error) Code() string {
	switch e.Kind {
	case ErrMissingIdentity:
		return "MISSING_IDENTITY"
	case ErrBackendUnreachable:
		return "BACKEND_UNREACHABLE"
	case ErrBackendRejected:
		return "BACKEND_REJECTED"
	case ErrMalformedResponse:
		return "MALFORMED_RESPONSE"
	}
	return "REGISTRATION_FAILED"
}

func newError(kind error, status int, cause error) *Error {
	return &Error{Kind: kind, Status: status, Err: cause}
}

// Message converts a run error into the text shown in place of the spinner.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingIdentity):
		return "Init data or user information is missing."
	case errors.Is(err, ErrBackendUnreachable):
		return "Could not reach the backend. Please try again later."
	case errors.Is(err, ErrBackendRejected):
		return "Failed to send user data to the backend."
	case errors.Is(err, ErrMalformedResponse):
		return "The backend returned an unexpected response."
	}
	return "An unexpected error occurred."
}

// outcome labels a run for metrics.
func outcome(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code()
	}
	if err != nil {
		return "UNKNOWN"
	}
	return "OK"
}
