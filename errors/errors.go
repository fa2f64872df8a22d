package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError is the unified minject error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: StatusForCode(code),
	}
}

// --- Constructors ---

// MissingProvider reports a key with no registered provider.
func MissingProvider(key string) *AppError {
	return &AppError{
		Code: ErrCodeMissingProvider, Message: fmt.Sprintf("No provider found for key %q", key),
		HTTPStatus: StatusForCode(ErrCodeMissingProvider),
		Details:    map[string]any{"key": key},
	}
}

// CyclicDependency reports a resolution path that revisits a key. The path
// lists keys from the outermost resolution to the repeated one.
func CyclicDependency(path []string) *AppError {
	return &AppError{
		Code: ErrCodeCyclicDependency, Message: fmt.Sprintf("Cyclic dependency: %s", strings.Join(path, " -> ")),
		HTTPStatus: StatusForCode(ErrCodeCyclicDependency),
		Details:    map[string]any{"path": path},
	}
}

// TypeMismatch reports a value of the wrong type for its destination.
func TypeMismatch(key, want, got string) *AppError {
	return &AppError{
		Code: ErrCodeTypeMismatch, Message: fmt.Sprintf("Value for %q is %s, expected %s", key, got, want),
		HTTPStatus: StatusForCode(ErrCodeTypeMismatch),
		Details:    map[string]any{"key": key, "expected": want, "actual": got},
	}
}

// ConstructionFailed wraps an error returned by a factory or initializer.
func ConstructionFailed(key string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeConstructionFailed, Message: fmt.Sprintf("Failed to construct %q", key),
		HTTPStatus: StatusForCode(ErrCodeConstructionFailed),
		Details:    map[string]any{"key": key}, Cause: cause,
	}
}

// InvalidInjection reports an injection declared on an unsuitable function.
func InvalidInjection(reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInjection, Message: fmt.Sprintf("Invalid injection: %s", reason),
		HTTPStatus: StatusForCode(ErrCodeInvalidInjection),
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: StatusForCode(ErrCodeInvalidInput), Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: StatusForCode(ErrCodeInvalidInput),
	}
}

// Internal creates a new AppError for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: StatusForCode(ErrCodeInternal), Cause: cause,
	}
}

// IsCode reports whether any error in err's chain is an AppError with code.
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// Join combines errors, dropping nils.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
