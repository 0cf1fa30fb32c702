package roster

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed remote call.
type ErrorKind int

const (
	// KindTransport covers connection, DNS and timeout failures.
	KindTransport ErrorKind = iota + 1
	// KindStatus is a response with a non-success status code.
	KindStatus
	// KindDecode is a response body that does not have the expected shape.
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error describes a failed request against the student service.
type Error struct {
	Op        string
	Path      string
	Kind      ErrorKind
	Status    int
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("%s: api %s returned status %d", e.Op, e.Path, e.Status)
	case KindDecode:
		return fmt.Sprintf("%s: decode response: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: execute request: %v", e.Op, e.Err)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// KindOf extracts the ErrorKind of err, or zero when err did not come from
// the client.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// RequestIDOf returns the X-Request-ID sent with the failed request.
func RequestIDOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.RequestID
	}
	return ""
}
