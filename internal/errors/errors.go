package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the code of a wrapped AppError
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is (or wraps) an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// coder is implemented by domain errors that carry their own code.
type coder interface {
	Code() string
}

// GetCode returns the code of the outermost AppError or coded domain error in the chain,
// otherwise "UNKNOWN"
func GetCode(err error) string {
	for err != nil {
		switch e := err.(type) {
		case *AppError:
			return e.Code
		case coder:
			return e.Code()
		}
		err = stderrors.Unwrap(err)
	}
	return "UNKNOWN"
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code string) bool {
	for err != nil {
		switch e := err.(type) {
		case *AppError:
			if e.Code == code {
				return true
			}
		case coder:
			if e.Code() == code {
				return true
			}
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// Predefined error codes
const (
	CodeConfigInvalid      = "CONFIG_INVALID"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeExternalService    = "EXTERNAL_SERVICE_ERROR"
	CodeServiceUnreachable = "SERVICE_UNREACHABLE"
	CodeInvalidInput       = "INVALID_INPUT"

	CodeUnknownMission    = "UNKNOWN_MISSION"
	CodeFieldValidation   = "FIELD_VALIDATION"
	CodeIncompleteRecord  = "INCOMPLETE_RECORD"
	CodeAlreadyInProgress = "ALREADY_IN_PROGRESS"
	CodeCsvParse          = "CSV_PARSE_ERROR"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeNotReady          = "NOT_READY"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code:    CodeExternalService,
		Message: fmt.Sprintf("%s service error", service),
		Cause:   cause,
	}
}

// ServiceUnreachable marks a transport-level failure: the remote never answered.
func ServiceUnreachable(service string, cause error) *AppError {
	return &AppError{
		Code:    CodeServiceUnreachable,
		Message: fmt.Sprintf("%s service unreachable", service),
		Cause:   cause,
	}
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}
