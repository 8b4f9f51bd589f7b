package serpdump

import (
	"errors"
	"fmt"
	"strings"
)

// Application error codes.
const (
	EINTERNAL    = "internal"
	EINVALID     = "invalid"
	ENOTFOUND    = "not_found"
	ENOMATCH     = "no_match"
	EUNAVAILABLE = "unavailable"
	EPERSIST     = "persist"
)

// Error represents an application-specific error.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("serpdump error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var pe *PersistError
	if errors.As(err, &pe) {
		return EPERSIST
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	var pe *PersistError
	if errors.As(err, &pe) {
		return pe.Error()
	}
	return "Internal error."
}

// PersistError reports the formats whose artifacts could not be written.
// Formats missing from Failures were written successfully.
type PersistError struct {
	Failures map[Format]error
}

// Error lists the failed formats in Formats order.
func (e *PersistError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range Formats() {
		if err, ok := e.Failures[f]; ok {
			parts = append(parts, fmt.Sprintf("%s: %v", f, err))
		}
	}
	return "failed to persist " + strings.Join(parts, "; ")
}

// Failed reports whether the artifact for format could not be written.
func (e *PersistError) Failed(format Format) bool {
	_, ok := e.Failures[format]
	return ok
}
