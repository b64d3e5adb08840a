package errors

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrorType classifies an AppError.
type ErrorType string

const (
	ErrorTypeNotFound    ErrorType = "NOT_FOUND"
	ErrorTypeBadRequest  ErrorType = "BAD_REQUEST"
	ErrorTypeConflict    ErrorType = "CONFLICT"
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE"
	ErrorTypeInternal    ErrorType = "INTERNAL"
)

// AppError is an error with a category the caller can branch on.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError without a cause.
func New(errorType ErrorType, message string) error {
	return &AppError{Type: errorType, Message: message}
}

// Wrap creates an AppError around err.
func Wrap(errorType ErrorType, message string, err error) error {
	return &AppError{Type: errorType, Message: message, Err: err}
}

func NotFound(message string) error    { return New(ErrorTypeNotFound, message) }
func BadRequest(message string) error  { return New(ErrorTypeBadRequest, message) }
func Conflict(message string) error    { return New(ErrorTypeConflict, message) }
func Unavailable(message string) error { return New(ErrorTypeUnavailable, message) }
func Internal(message string) error    { return New(ErrorTypeInternal, message) }

// TypeOf returns the category of err, or "" when err is not an AppError.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

func IsNotFound(err error) bool    { return TypeOf(err) == ErrorTypeNotFound }
func IsBadRequest(err error) bool  { return TypeOf(err) == ErrorTypeBadRequest }
func IsConflict(err error) bool    { return TypeOf(err) == ErrorTypeConflict }
func IsUnavailable(err error) bool { return TypeOf(err) == ErrorTypeUnavailable }
func IsInternal(err error) bool    { return TypeOf(err) == ErrorTypeInternal }

// IsDuplicateError reports whether err is a unique-constraint violation from
// postgres or sqlite, translated by gorm or not.
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || IsConflict(err) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
