package protocol

import (
	"errors"
	"fmt"
)

// Code classifies a tool failure. Every operation on the tool surface reports
// failure through exactly one of these codes so callers can branch without
// string-matching diagnostics.
type Code string

const (
	// CodeNotFound means no script matched discovery criteria, or an explicit
	// path does not exist.
	CodeNotFound Code = "not_found"
	// CodeInvalidInput means a malformed argument, including a path that would
	// escape the workspace root.
	CodeInvalidInput Code = "invalid_input"
	// CodeExternalToolFailure means the generator or runner exited non-zero or
	// could not be spawned. The error carries the captured diagnostic text.
	CodeExternalToolFailure Code = "external_tool_failure"
	// CodeResourceExhausted means no free port was found within the search window.
	CodeResourceExhausted Code = "resource_exhausted"
	// CodeProcessControlFailure means neither the graceful nor the forceful
	// termination signal could be delivered.
	CodeProcessControlFailure Code = "process_control_failure"
)

// Error is the structured failure type for the whole tool surface.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	// Detail carries captured subprocess diagnostics when available.
	Detail string `json:"detail,omitempty"`
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NotFoundf builds a CodeNotFound error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidInputf builds a CodeInvalidInput error.
func InvalidInputf(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// ExternalToolFailure builds a CodeExternalToolFailure error carrying the
// captured diagnostic text from the failed tool.
func ExternalToolFailure(message, detail string) *Error {
	return &Error{Code: CodeExternalToolFailure, Message: message, Detail: detail}
}

// ResourceExhaustedf builds a CodeResourceExhausted error.
func ResourceExhaustedf(format string, args ...any) *Error {
	return &Error{Code: CodeResourceExhausted, Message: fmt.Sprintf(format, args...)}
}

// ProcessControlFailuref builds a CodeProcessControlFailure error.
func ProcessControlFailuref(format string, args ...any) *Error {
	return &Error{Code: CodeProcessControlFailure, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the failure code from err, unwrapping as needed. Errors that
// did not originate from this package report an empty Code.
func CodeOf(err error) Code {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
