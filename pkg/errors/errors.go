package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	// ErrMissingCode marks an upstream data-integrity violation: a clinical
	// entity arrived without any code, so it cannot be projected.
	ErrMissingCode ErrorCode = iota + 1000
	ErrIO
	ErrInternal
)

// Error constructors
func MissingCode(entity string) *AppError {
	return &AppError{
		Code:    ErrMissingCode,
		Message: fmt.Sprintf("%s has no codes", entity),
	}
}

func IO(op string, err error) *AppError {
	return &AppError{
		Code:    ErrIO,
		Message: fmt.Sprintf("%s failed", op),
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal error",
		Err:     err,
	}
}

// IsMissingCode reports whether err is a missing-code data-integrity error,
// so callers can skip the offending entity instead of aborting the export.
func IsMissingCode(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrMissingCode
}
