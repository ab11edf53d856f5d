package searchclient

import (
	"errors"
	"fmt"
)

// ErrUnexpectedShape reports a 2xx response whose body is not the JSON
// shape the endpoint promises.
var ErrUnexpectedShape = errors.New("unexpected response shape")

// StatusError is a non-2xx response.
type StatusError struct {
	Code int
	// Body is the first few hundred bytes of the response, for logs.
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search service returned HTTP %d", e.Code)
}

// TransportError wraps failures below HTTP: refused connections, DNS,
// resets, cancelled contexts.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "search service unreachable: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Kind names the class of a client error for logging.
type Kind string

const (
	KindNone      Kind = ""
	KindHTTP      Kind = "http"
	KindTransport Kind = "transport"
	KindSchema    Kind = "schema"
	KindOther     Kind = "other"
)

// KindOf classifies err.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return KindHTTP
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return KindTransport
	}
	if errors.Is(err, ErrUnexpectedShape) {
		return KindSchema
	}
	return KindOther
}
