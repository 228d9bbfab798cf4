// Package toolerr classifies failures of the external ung tool so the
// command bus can decide retry eligibility and the HTTP surface can map
// failures to status codes.
package toolerr

import (
	"context"
	"errors"
	"fmt"
)

// Kind is the failure class of a tool invocation.
type Kind string

const (
	KindUnknown          Kind = "unknown"
	KindToolNotInstalled Kind = "tool_not_installed"
	KindExecutionFailed  Kind = "execution_failed"
	KindParse            Kind = "parse_error"
	KindValidation       Kind = "validation_error"
	KindNotFound         Kind = "not_found"
	KindPermissionDenied Kind = "permission_denied"
	KindNetwork          Kind = "network_error"
	KindTimeout          Kind = "timeout"
)

// Error wraps a failure with its class and the operation that produced
// it. Attempts counts executions of the command, including retries.
type Error struct {
	Kind     Kind
	Op       string
	Message  string
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a classified error.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap classifies an underlying error. A nil err yields nil.
func Wrap(kind Kind, op string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the failure class from err. Context deadline errors
// classify as timeouts even when unwrapped.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnknown
}

// AttemptsOf returns the attempt count recorded on err, or 0.
func AttemptsOf(err error) int {
	var te *Error
	if errors.As(err, &te) {
		return te.Attempts
	}
	return 0
}

// Retryable reports whether the failure class is transient. Only
// timeouts and network-style failures qualify; validation and
// not-found failures must propagate immediately.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindTimeout, KindNetwork:
		return true
	default:
		return false
	}
}

// Terminal reports failure classes expected to drive a one-time setup
// flow rather than repeated retries.
func Terminal(err error) bool {
	switch KindOf(err) {
	case KindToolNotInstalled, KindPermissionDenied:
		return true
	default:
		return false
	}
}
