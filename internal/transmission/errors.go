package transmission

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingSessionHeader is wrapped by a TransportError when the daemon
// rejects the session but does not hand out a replacement token.
var ErrMissingSessionHeader = errors.New("missing session header")

// TransportError reports that the HTTP exchange itself could not complete.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("transport: %v", e.Err)
	}
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeKind classifies a DecodeError.
type DecodeKind int

const (
	DecodeJSON DecodeKind = iota
	DecodeMissingField
	DecodeInvalidType
)

func (k DecodeKind) String() string {
	switch k {
	case DecodeJSON:
		return "json"
	case DecodeMissingField:
		return "missing field"
	case DecodeInvalidType:
		return "invalid type"
	default:
		return "unknown"
	}
}

// DecodeError reports a response that could not be mapped onto the expected
// shape. Field holds the wire key involved and Expected the JSON kind the
// decoder wanted, when applicable.
type DecodeError struct {
	Kind     DecodeKind
	Field    string
	Expected string
	Err      error
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case DecodeJSON:
		return fmt.Sprintf("decode: malformed json: %v", e.Err)
	case DecodeMissingField:
		return fmt.Sprintf("decode: missing field %q", e.Field)
	case DecodeInvalidType:
		if e.Field == "" {
			return fmt.Sprintf("decode: expected %s", e.Expected)
		}
		return fmt.Sprintf("decode: field %q is not a %s", e.Field, e.Expected)
	default:
		return "decode: unknown error"
	}
}

func (e *DecodeError) Unwrap() error { return e.Err }

func missingField(field string) *DecodeError {
	return &DecodeError{Kind: DecodeMissingField, Field: field}
}

func invalidType(expected, field string) *DecodeError {
	return &DecodeError{Kind: DecodeInvalidType, Expected: expected, Field: field}
}

// DaemonError reports a failure the daemon signalled: either an HTTP status
// other than 200, or an envelope whose result was not "success".
type DaemonError struct {
	StatusCode int
	Message    string
}

func (e *DaemonError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("daemon: unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("daemon: %s", e.Message)
}

// EncodeError reports a request whose arguments could not be serialized.
type EncodeError struct {
	Method string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Method, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// IsTransport reports whether err wraps a TransportError.
func IsTransport(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

// IsDecode reports whether err wraps a DecodeError.
func IsDecode(err error) bool {
	var target *DecodeError
	return errors.As(err, &target)
}

// IsDaemon reports whether err wraps a DaemonError.
func IsDaemon(err error) bool {
	var target *DaemonError
	return errors.As(err, &target)
}
