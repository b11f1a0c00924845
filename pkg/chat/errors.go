package chat

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest reports a request that cannot be serialized
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidArgument reports bad client configuration
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrTransport reports a failure below the HTTP layer
	ErrTransport = errors.New("transport error")
	// ErrHTTP reports an HTTP status >= 400 from the API
	ErrHTTP = errors.New("http error")
	// ErrParse reports a response body that is not valid JSON
	ErrParse = errors.New("parse error")
)

// TransportError wraps a connection, DNS, TLS or timeout failure
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// HTTPError carries the status code and raw body of a failed API call
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error %d: %s", e.StatusCode, string(e.Body))
}

func (e *HTTPError) Is(target error) bool { return target == ErrHTTP }

// ParseError reports a malformed JSON response document
type ParseError struct {
	Body []byte
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse response: malformed JSON (%d bytes)", len(e.Body))
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

func invalidRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
