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

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Fatal run errors: the run aborts before any write
	ErrManifestRead  ErrorCode = "MANIFEST_READ"
	ErrManifestParse ErrorCode = "MANIFEST_PARSE"
	ErrManifestWrite ErrorCode = "MANIFEST_WRITE"
	ErrTemplateRoot  ErrorCode = "TEMPLATE_ROOT"
	ErrLocked        ErrorCode = "LOCKED"

	// Per-file errors: recorded in the report, the run continues
	ErrFingerprint ErrorCode = "FINGERPRINT"
	ErrFileAccess  ErrorCode = "FILE_ACCESS"
	ErrFileCopy    ErrorCode = "FILE_COPY"
)

// Exit statuses returned by the CLI
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitManifest = 2
	ExitTemplate = 3
	ExitLocked   = 4
)

// CogError represents a structured error with code and details
type CogError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *CogError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *CogError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *CogError) Is(target error) bool {
	var targetErr *CogError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new CogError with the given code and message
func New(code ErrorCode, message string) *CogError {
	return &CogError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new CogError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *CogError {
	return &CogError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a CogError
func Wrap(err error, code ErrorCode, message string) *CogError {
	if err == nil {
		return nil
	}
	return &CogError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *CogError {
	if err == nil {
		return nil
	}
	return &CogError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *CogError) WithDetail(key string, value interface{}) *CogError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var cogErr *CogError
	if errors.As(err, &cogErr) {
		return cogErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a CogError
func GetErrorCode(err error) ErrorCode {
	var cogErr *CogError
	if errors.As(err, &cogErr) {
		return cogErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a CogError
func GetErrorDetails(err error) map[string]interface{} {
	var cogErr *CogError
	if errors.As(err, &cogErr) {
		return cogErr.Details
	}
	return nil
}

// IsFatal reports whether err aborts a sync run.
func IsFatal(err error) bool {
	switch GetErrorCode(err) {
	case ErrManifestRead, ErrManifestParse, ErrManifestWrite, ErrTemplateRoot, ErrLocked:
		return true
	}
	return false
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch GetErrorCode(err) {
	case ErrManifestRead, ErrManifestParse, ErrManifestWrite:
		return ExitManifest
	case ErrTemplateRoot:
		return ExitTemplate
	case ErrLocked:
		return ExitLocked
	default:
		return ExitFailure
	}
}
