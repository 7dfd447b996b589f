package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Link resolution errors
	ErrResolution ErrorCode = "RESOLUTION"

	// Pipeline definition errors
	ErrPipelineNotFound ErrorCode = "PIPELINE_NOT_FOUND"
	ErrPipelineParse    ErrorCode = "PIPELINE_PARSE"
	ErrAttribute        ErrorCode = "ATTRIBUTE"

	// Archive errors
	ErrArchiveOpen   ErrorCode = "ARCHIVE_OPEN"
	ErrArchiveWrite  ErrorCode = "ARCHIVE_WRITE"
	ErrArchiveClosed ErrorCode = "ARCHIVE_CLOSED"
	ErrArchiveRegex  ErrorCode = "ARCHIVE_REGEX"
	ErrTargetScan    ErrorCode = "TARGET_SCAN"

	// Command errors
	ErrCommandState ErrorCode = "COMMAND_STATE"
	ErrProcessSpawn ErrorCode = "PROCESS_SPAWN"
	ErrProcessExec  ErrorCode = "PROCESS_EXEC"

	// Export tree errors
	ErrDirectory  ErrorCode = "DIRECTORY"
	ErrProvision  ErrorCode = "PROVISION"
	ErrDirtyState ErrorCode = "DIRTY_STATE"
	ErrExport     ErrorCode = "EXPORT"

	// Project errors
	ErrProjectLoad ErrorCode = "PROJECT_LOAD"
	ErrProjectSave ErrorCode = "PROJECT_SAVE"

	// Configuration errors
	ErrConfigLoad ErrorCode = "CONFIG_LOAD"
)

// RibforgeError represents a structured error with code and details
type RibforgeError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *RibforgeError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *RibforgeError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *RibforgeError) Is(target error) bool {
	var targetErr *RibforgeError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new RibforgeError with the given code and message
func New(code ErrorCode, message string) *RibforgeError {
	return &RibforgeError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new RibforgeError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *RibforgeError {
	return &RibforgeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a RibforgeError
func Wrap(err error, code ErrorCode, message string) *RibforgeError {
	if err == nil {
		return nil
	}
	return &RibforgeError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *RibforgeError {
	if err == nil {
		return nil
	}
	return &RibforgeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *RibforgeError) WithDetail(key string, value interface{}) *RibforgeError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *RibforgeError) WithDetails(details map[string]interface{}) *RibforgeError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var rfErr *RibforgeError
	if errors.As(err, &rfErr) {
		return rfErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a RibforgeError
func GetErrorCode(err error) ErrorCode {
	var rfErr *RibforgeError
	if errors.As(err, &rfErr) {
		return rfErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a RibforgeError
func GetErrorDetails(err error) map[string]interface{} {
	var rfErr *RibforgeError
	if errors.As(err, &rfErr) {
		return rfErr.Details
	}
	return nil
}
