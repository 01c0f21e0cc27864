package client

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/mathbombs/core"
)

// ErrorKind classifies an expected failure of a client call.
type ErrorKind int

const (
	// KindValidation is a required field missing; detected locally, the request is never sent.
	KindValidation ErrorKind = iota + 1
	// KindApplication is an envelope with `error` populated by the server.
	KindApplication
	// KindTransport is a network failure, a timeout or a body that is not JSON.
	KindTransport
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindApplication:
		return "application"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

var (
	errTimeout     = "request timed out"
	errUnreachable = "server unreachable"
	errInvalidBody = "invalid response from server"
)

// Error is the one shape every expected failure takes, whatever its origin.
type Error struct {
	Kind      ErrorKind
	Message   string
	Errors    []string
	Status    int  // HTTP status; 0 when no response was received
	Retryable bool // timeouts & network failures
	Err       error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var cErr *Error
	if errors.As(err, &cErr) {
		return cErr.Kind == kind
	}
	return false
}

// Message returns the user facing message of err (the envelope `error` for client errors).
func Message(err error) string {
	if err == nil {
		return ""
	}
	var cErr *Error
	if errors.As(err, &cErr) {
		return cErr.Message
	}
	return err.Error()
}

// localError builds the envelope returned when a request fails local validation.
func localError(err error) Envelope {
	var msgs []string
	if vErr, ok := errors.Cause(err).(*core.ValidationError); ok {
		msgs = vErr.Messages()
	}
	if len(msgs) == 0 {
		msgs = []string{err.Error()}
	}
	return Envelope{
		Error:  msgs[0],
		Errors: msgs,
		kind:   KindValidation,
		cause:  err,
	}
}

// transportError builds the envelope for a request that produced no usable response.
func transportError(msg string, status int, retryable bool, cause error) Envelope {
	return Envelope{
		Error:     msg,
		Errors:    []string{msg},
		Status:    status,
		kind:      KindTransport,
		retryable: retryable,
		cause:     cause,
	}
}

func statusMessage(status int) string {
	if txt := http.StatusText(status); txt != "" {
		return txt
	}
	return errInvalidBody
}
