// Package errors defines the coded errors shared by the update pipeline and
// the settings layer. Callers branch on Code rather than on message text.
package errors

import (
	"errors"
	"fmt"
)

// Code identifies a structured error type used across the application.
type Code string

const (
	CodeUnknown Code = "unknown"

	// Fetch pipeline
	CodeNetworkFailure Code = "network_failure"
	CodeParseFailed    Code = "parse_failed"

	// Persisted settings
	CodeSettingsParse Code = "settings_parse_failed"
	CodeSettingsIO    Code = "settings_io_failed"

	CodeConfigurationError Code = "configuration_error"
)

// Error pairs a machine-readable code with a human message and the cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface. The cause is appended to the message
// so a manual check can show the whole chain to the user.
func (e Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return string(e.Code)
}

// Unwrap returns the wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// New wraps an error with a code/message.
func New(code Code, msg string, err error) Error {
	return Error{Code: code, Message: msg, Err: err}
}

// Newf is New with a formatted message.
func Newf(code Code, err error, format string, args ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf walks the error chain and returns the first structured code found.
func CodeOf(err error) Code {
	var structured Error
	if errors.As(err, &structured) {
		return structured.Code
	}
	return CodeUnknown
}

// IsCode reports whether the error (or its unwrap chain) matches the provided code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
