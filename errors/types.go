package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG_INVALID"

	// Authentication errors
	ErrCodeAuthLibraryMissing ErrorCode = "AUTH_LIBRARY_MISSING"
	ErrCodeSessionInvalid     ErrorCode = "SESSION_INVALID"
	ErrCodeLoginFailed        ErrorCode = "LOGIN_FAILED"

	// Persistence errors
	ErrCodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"

	// Handoff errors
	ErrCodeExecutableNotFound ErrorCode = "EXECUTABLE_NOT_FOUND"
	ErrCodeHandoffFailed      ErrorCode = "HANDOFF_FAILED"
	ErrCodeCommandFailed      ErrorCode = "COMMAND_FAILED"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// GateError represents a structured error with context
type GateError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *GateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *GateError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *GateError) WithDetail(key string, value interface{}) *GateError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON. The cause is flattened into a
// "cause" detail so verbose output keeps the raw library message.
func (e *GateError) ToJSON() string {
	out := *e
	if e.Cause != nil {
		out.Details = make(map[string]interface{}, len(e.Details)+1)
		for k, v := range e.Details {
			out.Details[k] = v
		}
		out.Details["cause"] = e.Cause.Error()
	}
	data, _ := json.MarshalIndent(&out, "", "  ")
	return string(data)
}

// New creates a new GateError
func New(code ErrorCode, message string) *GateError {
	return &GateError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a GateError
func Wrap(err error, code ErrorCode, message string) *GateError {
	return &GateError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// As returns the outermost GateError in the chain, if any.
func As(err error) (*GateError, bool) {
	for err != nil {
		if gateErr, ok := err.(*GateError); ok {
			return gateErr, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = unwrapper.Unwrap()
	}
	return nil, false
}

// Is checks if an error is a specific GateError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	gateErr, ok := err.(*GateError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	if gateErr.Code == code {
		return true
	}
	return Is(gateErr.Cause, code)
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if gateErr, ok := As(err); ok {
		return gateErr.Code
	}
	return ""
}

// ExitCode maps an error to the process exit status. A downstream
// command's own status is propagated verbatim; every other failure
// exits with 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	gateErr, ok := As(err)
	if !ok {
		return 1
	}
	if gateErr.Code == ErrCodeCommandFailed {
		if code, ok := gateErr.Details["exitCode"].(int); ok && code > 0 {
			return code
		}
	}
	return 1
}
