package errors

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes an application error or control signal.
type ErrorCode string

const (
	// ErrCodeForbidden covers authentication, authorization, and CSRF
	// failures. Always rendered as an opaque 403; detail stays server-side.
	ErrCodeForbidden ErrorCode = "forbidden"
	// ErrCodeRedirect is the benign need-to-authenticate signal that drives
	// the OAuth flow. Carries the target URL.
	ErrCodeRedirect ErrorCode = "redirect"
	// ErrCodeDisplay is a user-correctable input error surfaced as inline
	// page text rather than an HTTP error status.
	ErrCodeDisplay ErrorCode = "display"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeConflict indicates a conflict with existing data.
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeInternal indicates an unrecoverable internal failure. The
	// request transaction rolls back and the client sees a generic 500.
	ErrCodeInternal ErrorCode = "internal"
)

// AppError is a structured application error with a code, message, and
// optional cause. It supports errors.Is/errors.As via Unwrap.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
	// URL is the redirect target; set only for ErrCodeRedirect.
	URL string
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Forbidden creates a Forbidden signal. The message is for the server-side
// audit trail only and is never written to the client.
func Forbidden(message string) *AppError {
	return &AppError{Code: ErrCodeForbidden, Message: message}
}

// Forbiddenf creates a Forbidden signal with a formatted audit message.
func Forbiddenf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeForbidden, Message: fmt.Sprintf(format, args...)}
}

// RedirectTo creates a Redirect signal targeting url.
func RedirectTo(url string) *AppError {
	return &AppError{Code: ErrCodeRedirect, Message: "redirect", URL: url}
}

// Display creates a DisplayError signal whose message is shown to the user
// as an inline fragment.
func Display(message string) *AppError {
	return &AppError{Code: ErrCodeDisplay, Message: message}
}

// Displayf creates a DisplayError signal with a formatted message.
func Displayf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeDisplay, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a NotFound error.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// NotFoundf creates a NotFound error with a formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a Conflict error.
func Conflict(message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message}
}

// Validation creates a Validation error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// Internal creates an Internal (unrecoverable) error.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsForbidden checks if an error is a Forbidden signal.
func IsForbidden(err error) bool { return isCode(err, ErrCodeForbidden) }

// IsRedirect checks if an error is a Redirect signal.
func IsRedirect(err error) bool { return isCode(err, ErrCodeRedirect) }

// IsDisplay checks if an error is a DisplayError signal.
func IsDisplay(err error) bool { return isCode(err, ErrCodeDisplay) }

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool { return isCode(err, ErrCodeNotFound) }

// IsConflict checks if an error is a Conflict error.
func IsConflict(err error) bool { return isCode(err, ErrCodeConflict) }

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool { return isCode(err, ErrCodeValidation) }

// IsInternal checks if an error is an Internal error.
func IsInternal(err error) bool { return isCode(err, ErrCodeInternal) }

// GetCode returns the ErrorCode from an error, or empty string if it is not
// an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// RedirectURL returns the redirect target of a Redirect signal, or empty
// string if err is not one.
func RedirectURL(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code == ErrCodeRedirect {
		return appErr.URL
	}
	return ""
}
