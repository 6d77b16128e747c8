// Package errors defines the single error taxonomy shared by the Appium
// dispatch core and the AI provider layer. Every failure surfaced by this
// server carries one of the codes below so callers can branch on kind
// without string matching.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Code identifies the kind of failure.
type Code string

// Dispatch-core codes.
const (
	CodeConnection        Code = "CONNECTION"
	CodeTimeout           Code = "TIMEOUT"
	CodeInvalidArgument   Code = "INVALID_ARGUMENT"
	CodeSessionNotCreated Code = "SESSION_NOT_CREATED"
	CodeNoSuchElement     Code = "NO_SUCH_ELEMENT"
	CodeProtocol          Code = "PROTOCOL"
)

// AI provider codes. CodeAIProvider is the base kind; the others refine it.
const (
	CodeAIProvider         Code = "AI_PROVIDER"
	CodeAIConnection       Code = "AI_CONNECTION"
	CodeAIAuthentication   Code = "AI_AUTHENTICATION"
	CodeAIQuotaExceeded    Code = "AI_QUOTA_EXCEEDED"
	CodeAIResponseParsing  Code = "AI_RESPONSE_PARSING"
	CodeAIModelUnavailable Code = "AI_MODEL_UNAVAILABLE"
)

// Error is a coded error with an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// New creates a coded error.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a coded error around a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// CodeOf extracts the code from err, unwrapping as needed. Returns "" for
// nil or uncoded errors.
func CodeOf(err error) Code {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if stderrors.As(err, &e) {
			if e.Code == code {
				return true
			}
			err = e.Cause
			continue
		}
		return false
	}
	return false
}

// IsAIError reports whether err belongs to the AI provider family.
func IsAIError(err error) bool {
	switch CodeOf(err) {
	case CodeAIProvider, CodeAIConnection, CodeAIAuthentication,
		CodeAIQuotaExceeded, CodeAIResponseParsing, CodeAIModelUnavailable:
		return true
	}
	return false
}
