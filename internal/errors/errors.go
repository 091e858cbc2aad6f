package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeInvalidCredentials indicates a failed username/password check.
	ErrCodeInvalidCredentials ErrorCode = "invalid_credentials"
	// ErrCodeAccountLocked indicates the account is locked out after repeated failures.
	ErrCodeAccountLocked ErrorCode = "account_locked"
	// ErrCodeCSRFRejected indicates a missing or mismatching CSRF token.
	ErrCodeCSRFRejected ErrorCode = "csrf_rejected"
	// ErrCodeAuthRequired indicates the request carries no valid session.
	ErrCodeAuthRequired ErrorCode = "authentication_required"
	// ErrCodeInsufficientRole indicates the session role does not permit the operation.
	ErrCodeInsufficientRole ErrorCode = "insufficient_role"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeDuplicate indicates a uniqueness-key collision with existing data.
	ErrCodeDuplicate ErrorCode = "duplicate"
	// ErrCodeReferenced indicates dependent records still point at the target.
	ErrCodeReferenced ErrorCode = "referenced"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeBusinessState indicates the record's lifecycle forbids the mutation.
	ErrCodeBusinessState ErrorCode = "business_state"
	// ErrCodeStorage indicates an unexpected database failure.
	ErrCodeStorage ErrorCode = "storage"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
)

// AppError is a structured application error with a code, a user-facing
// message, and an optional cause. It supports errors.Is / errors.As via
// Unwrap. Storage causes are never exposed to clients; handlers render only
// Code, Message, and Field.
type AppError struct {
	Code    ErrorCode
	Message string
	// Field is the offending input field, set for validation and duplicate errors.
	Field string
	Cause error
}

// Error implements the error interface.
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

// CodeOf returns the AppError code of err, or ErrCodeStorage when err is not
// an AppError. A nil err returns the empty code.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeStorage
}

// IsCode reports whether err carries the given application error code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// InvalidCredentials creates an invalid-credentials error. The message is
// deliberately identical for unknown users and wrong passwords.
func InvalidCredentials() *AppError {
	return &AppError{Code: ErrCodeInvalidCredentials, Message: "Invalid username or password."}
}

// AccountLocked creates an account-locked error.
func AccountLocked() *AppError {
	return &AppError{
		Code:    ErrCodeAccountLocked,
		Message: "Account is temporarily locked after repeated failed logins. Try again later.",
	}
}

// CSRFRejected creates a CSRF rejection error.
func CSRFRejected() *AppError {
	return &AppError{Code: ErrCodeCSRFRejected, Message: "Invalid or missing CSRF token."}
}

// AuthRequired creates an authentication-required error.
func AuthRequired() *AppError {
	return &AppError{Code: ErrCodeAuthRequired, Message: "Authentication required."}
}

// InsufficientRole creates an insufficient-role error.
func InsufficientRole() *AppError {
	return &AppError{Code: ErrCodeInsufficientRole, Message: "You do not have permission to perform this action."}
}

// Validation creates a validation error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// Validationf creates a validation error with a formatted message.
func Validationf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationField creates a validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// Duplicate creates a uniqueness-collision error for a field.
func Duplicate(field, message string) *AppError {
	return &AppError{Code: ErrCodeDuplicate, Message: message, Field: field}
}

// Duplicatef creates a uniqueness-collision error with a formatted message.
func Duplicatef(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeDuplicate, Message: fmt.Sprintf(format, args...)}
}

// Referencedf creates a referential-integrity error naming the dependency class.
func Referencedf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeReferenced, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a not-found error.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// NotFoundf creates a not-found error with a formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// BusinessState creates a business-state guard error.
func BusinessState(message string) *AppError {
	return &AppError{Code: ErrCodeBusinessState, Message: message}
}

// BusinessStatef creates a business-state guard error with a formatted message.
func BusinessStatef(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeBusinessState, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps an unexpected database failure. The cause is kept for
// server-side logs; the message shown to clients stays generic.
func Storage(err error) *AppError {
	return &AppError{
		Code:    ErrCodeStorage,
		Message: "An unexpected error occurred. Please try again.",
		Cause:   err,
	}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// AsAppError returns err as an *AppError, or nil when err does not carry one.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
