package client

import "errors"

// TransportError means the request never got a successful answer: the service
// was unreachable, the deadline passed, or it returned a non-2xx status.
// Error returns only Reason so it can be shown after an action label.
type TransportError struct {
	Op         string
	StatusCode int // 0 when no response was received
	Reason     string
	Err        error
}

func (e *TransportError) Error() string { return e.Reason }

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError means a 2xx response body did not have the expected shape.
type ParseError struct {
	Op     string
	Reason string
	Err    error
}

func (e *ParseError) Error() string { return e.Reason }

func (e *ParseError) Unwrap() error { return e.Err }

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsParse reports whether err is (or wraps) a ParseError.
func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsStatus reports whether err carries the given HTTP status code.
func IsStatus(err error, code int) bool {
	var te *TransportError
	return errors.As(err, &te) && te.StatusCode == code
}
