package nats

import (
	"errors"
	"fmt"
)

// ErrorCode is a stable identifier for a class of failure raised by the
// protocol engine. Callers should switch on Code rather than comparing
// error values, since the underlying cause varies.
type ErrorCode string

const (
	ErrBadSubject           ErrorCode = "BAD_SUBJECT"
	ErrBadHeader            ErrorCode = "BAD_HEADER"
	ErrBadPayload           ErrorCode = "BAD_PAYLOAD"
	ErrConnectionClosed     ErrorCode = "CONNECTION_CLOSED"
	ErrConnectionDraining   ErrorCode = "CONNECTION_DRAINING"
	ErrConnectionRefused    ErrorCode = "CONNECTION_REFUSED"
	ErrConnectionTimeout    ErrorCode = "CONNECTION_TIMEOUT"
	ErrServerOptionNA       ErrorCode = "SERVER_OPTION_NA"
	ErrAuthorizationViolation ErrorCode = "AUTHORIZATION_VIOLATION"
	ErrPermissionsViolation ErrorCode = "PERMISSIONS_VIOLATION"
	ErrStaleConnection      ErrorCode = "STALE_CONNECTION"
	ErrSlowConsumer         ErrorCode = "SLOW_CONSUMER"
	ErrTimeout              ErrorCode = "TIMEOUT"
	ErrMaxPayloadExceeded   ErrorCode = "MAX_PAYLOAD_EXCEEDED"
	ErrProtocolError        ErrorCode = "PROTOCOL_ERROR"
	ErrNoResponders         ErrorCode = "NO_RESPONDERS"
)

// Error is the error type returned by every failing operation in this
// package. It always carries a stable Code so callers can branch on
// failure class without string matching.
type Error struct {
	Code    ErrorCode
	Message string
	Subject string
	cause   error
}

func (e *Error) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("nats: %s: %s (subject=%q)", e.Code, e.Message, e.Subject)
	}
	return fmt.Sprintf("nats: %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is an *Error with the same Code, so callers can
// write errors.Is(err, &nats.Error{Code: nats.ErrTimeout}).
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// ErrorBuilder provides a fluent API for constructing an *Error, in the
// same spirit as the teacher's protobuf ErrorBuilder but built on the
// plain Code/Message/cause fields this module actually needs.
type ErrorBuilder struct {
	err *Error
}

// NewError starts building an Error with the given code.
func NewError(code ErrorCode) *ErrorBuilder {
	return &ErrorBuilder{err: &Error{Code: code}}
}

func (b *ErrorBuilder) WithMessage(msg string) *ErrorBuilder {
	b.err.Message = msg
	return b
}

func (b *ErrorBuilder) WithMessagef(format string, args ...interface{}) *ErrorBuilder {
	b.err.Message = fmt.Sprintf(format, args...)
	return b
}

func (b *ErrorBuilder) WithSubject(subject string) *ErrorBuilder {
	b.err.Subject = subject
	return b
}

func (b *ErrorBuilder) WithCause(cause error) *ErrorBuilder {
	b.err.cause = cause
	return b
}

func (b *ErrorBuilder) Build() *Error {
	return b.err
}

func newErr(code ErrorCode, format string, args ...interface{}) *Error {
	return NewError(code).WithMessagef(format, args...).Build()
}

func wrapErr(code ErrorCode, cause error, format string, args ...interface{}) *Error {
	return NewError(code).WithMessagef(format, args...).WithCause(cause).Build()
}
