// Package apperr provides the typed error shared by the API and the front-end.
// Services return these errors, handlers translate them to HTTP responses and
// the API client rebuilds them from the response body.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Kind represents the category of error.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	KindConflict
	KindForbidden
	KindUnauthorized
	KindBadRequest
	KindInternal
	KindUnavailable
)

var kindNames = map[Kind]string{
	KindUnknown:      "unknown",
	KindNotFound:     "not_found",
	KindValidation:   "validation",
	KindConflict:     "conflict",
	KindForbidden:    "forbidden",
	KindUnauthorized: "unauthorized",
	KindBadRequest:   "bad_request",
	KindInternal:     "internal",
	KindUnavailable:  "unavailable",
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// ParseKind is the inverse of Kind.String. Unknown names map to KindUnknown.
func ParseKind(name string) Kind {
	for k, n := range kindNames {
		if n == name {
			return k
		}
	}
	return KindUnknown
}

// Status returns the HTTP status associated with the kind.
func (k Kind) Status() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func kindFromStatus(status int) Kind {
	switch status {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindBadRequest
	case http.StatusConflict:
		return KindConflict
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return KindUnavailable
	case http.StatusInternalServerError:
		return KindInternal
	default:
		return KindUnknown
	}
}

// Error is an application error with a kind and the HTTP status code it maps to.
// StatusCode is kept as a string because that is how it travels on the wire.
type Error struct {
	Kind       Kind
	StatusCode string
	Message    string
	Op         string
	Err        error
	Timestamp  time.Time
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the numeric status code. A malformed StatusCode falls back
// to the status of the kind.
func (e *Error) HTTPStatus() int {
	if code, err := strconv.Atoi(e.StatusCode); err == nil && code >= 400 && code <= 599 {
		return code
	}
	return e.Kind.Status()
}

// WithOp sets the operation that failed.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

type wireError struct {
	Type       string `json:"type"`
	StatusCode string `json:"status_code"`
	Message    string `json:"message"`
	Operation  string `json:"operation,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// MarshalJSON encodes the error as its five wire fields.
func (e *Error) MarshalJSON() ([]byte, error) {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return json.Marshal(wireError{
		Type:       e.Kind.String(),
		StatusCode: e.StatusCode,
		Message:    e.Message,
		Operation:  e.Op,
		Timestamp:  ts.Format(time.RFC3339),
	})
}

// UnmarshalJSON decodes the five wire fields. When the type is missing or
// unknown the kind is derived from the status code.
func (e *Error) UnmarshalJSON(data []byte) error {
	var w wireError
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	e.Kind = ParseKind(w.Type)
	e.StatusCode = w.StatusCode
	e.Message = w.Message
	e.Op = w.Operation

	code, convErr := strconv.Atoi(w.StatusCode)
	if e.Kind == KindUnknown && convErr == nil {
		e.Kind = kindFromStatus(code)
	}
	if e.StatusCode == "" {
		e.StatusCode = strconv.Itoa(e.Kind.Status())
	}

	if w.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, w.Timestamp)
		if err != nil {
			return fmt.Errorf("apperr: invalid timestamp %q: %w", w.Timestamp, err)
		}
		e.Timestamp = ts
	}
	return nil
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{
		Kind:       kind,
		StatusCode: strconv.Itoa(kind.Status()),
		Message:    message,
		Timestamp:  time.Now().UTC(),
	}
}

// Wrap creates an error of the given kind wrapping err.
func Wrap(kind Kind, message string, err error) *Error {
	e := New(kind, message)
	e.Err = err
	return e
}

// FromStatus builds an error from a bare HTTP status.
func FromStatus(status int, message string) *Error {
	if message == "" {
		message = http.StatusText(status)
	}
	e := New(kindFromStatus(status), message)
	e.StatusCode = strconv.Itoa(status)
	return e
}

func NotFound(message string) *Error     { return New(KindNotFound, message) }
func Validation(message string) *Error   { return New(KindValidation, message) }
func Conflict(message string) *Error     { return New(KindConflict, message) }
func Forbidden(message string) *Error    { return New(KindForbidden, message) }
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }
func BadRequest(message string) *Error   { return New(KindBadRequest, message) }
func Unavailable(message string) *Error  { return New(KindUnavailable, message) }

// Internal wraps an unexpected error. The message stays generic so that
// driver details never reach the client.
func Internal(op string, err error) *Error {
	return Wrap(KindInternal, "internal server error", err).WithOp(op)
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
