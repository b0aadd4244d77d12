package calerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure surfaced by calendar operations.
type Kind int

const (
	// Unexpected is any failure not covered by the other kinds.
	Unexpected Kind = iota
	// InvalidInput covers malformed timestamps, missing identifiers and
	// calendar names that could not be resolved.
	InvalidInput
	// NotFound means a specific event or calendar does not exist.
	NotFound
	// UpstreamUnavailable means the remote calendar service call failed.
	UpstreamUnavailable
)

// String returns the kind name used in logs and metric labels.
func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case NotFound:
		return "not_found"
	case UpstreamUnavailable:
		return "upstream_unavailable"
	default:
		return "unexpected"
	}
}

// Error is a classified failure. Op names the operation that failed,
// Field the offending argument for InvalidInput errors.
type Error struct {
	Kind  Kind
	Op    string
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	detail := e.Msg
	if e.Err != nil {
		if detail == "" {
			detail = e.Err.Error()
		} else {
			detail = detail + ": " + e.Err.Error()
		}
	}

	switch e.Kind {
	case InvalidInput:
		return "Invalid input: " + detail
	case NotFound:
		return "Not found: " + detail
	case UpstreamUnavailable:
		return "Failed to connect to Google Calendar API: " + detail
	default:
		if e.Op == "" {
			return "Unexpected error: " + detail
		}
		return "Unexpected error " + e.Op + ": " + detail
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so callers can write
// errors.Is(err, &calerr.Error{Kind: calerr.NotFound}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Msg == "" && t.Field == "" && t.Err == nil
}

// Invalid reports a bad argument. The message must name the field.
func Invalid(field, msg string) *Error {
	return &Error{Kind: InvalidInput, Field: field, Msg: msg}
}

// Invalidf is Invalid with a formatted message.
func Invalidf(field, format string, args ...any) *Error {
	return Invalid(field, fmt.Sprintf(format, args...))
}

// NotFoundf reports a missing event or calendar.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: NotFound, Msg: fmt.Sprintf(format, args...)}
}

// Upstream wraps a failed remote call.
func Upstream(op string, err error) *Error {
	return &Error{Kind: UpstreamUnavailable, Op: op, Err: err}
}

// Wrap classifies err for op. Errors that already carry a kind are
// returned unchanged; anything else becomes Unexpected.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: Unexpected, Op: op, Err: err}
}

// KindOf returns the kind of err, or Unexpected when err is unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unexpected
}

// IsNotFound reports whether err is a NotFound failure.
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == NotFound
}
