package analysis

import (
	"errors"
	"fmt"
)

// ErrNoSettlement is returned when the stream ends cleanly without a
// terminal event. Callers must be able to tell this apart from a failure:
// the server never said the operation finished, it just stopped talking.
var ErrNoSettlement = errors.New("stream ended without settlement")

// ServerError is a failure reported by the service through an `error`
// stream event. The message is passed through verbatim.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// StreamError is a transport failure while issuing the request or reading
// the chunked response. It settles the operation as failure; re-invoking
// is the caller's decision.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream transport error: %v", e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}
