package syncclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransport marks failures where no response was received.
	ErrTransport = errors.New("transport failure")
	// ErrRejected marks non-2xx responses.
	ErrRejected = errors.New("rejected by backend")
	// ErrDecode marks success responses whose body could not be parsed.
	ErrDecode = errors.New("invalid response body")

	errEmptyBody = fmt.Errorf("%w: empty", ErrDecode)
)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, msg)
}

func (e *StatusError) Is(target error) bool { return target == ErrRejected }

type transportError struct {
	op  string
	err error
}

func (e *transportError) Error() string { return fmt.Sprintf("%s: %v", e.op, e.err) }

func (e *transportError) Unwrap() []error { return []error{ErrTransport, e.err} }

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
