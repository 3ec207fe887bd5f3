package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("resource not found")
	ErrConflict    = errors.New("resource already exists")
	ErrBadRequest  = errors.New("invalid input")
	ErrUnavailable = errors.New("store unavailable")
)

const (
	CodeNotFound    = "not_found"
	CodeConflict    = "conflict"
	CodeBadRequest  = "bad_request"
	CodeUnavailable = "unavailable"
)

// AppError is the closed error kind carried across the store, core and API
// layers. Code is one of the Code* constants; Err keeps the underlying cause
// for logging without leaking it to clients.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message, ErrNotFound)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message, ErrConflict)
}

func BadRequest(message string) *AppError {
	return New(CodeBadRequest, message, ErrBadRequest)
}

func Unavailable(message string, err error) *AppError {
	return New(CodeUnavailable, message, err)
}

func codeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || codeOf(err) == CodeNotFound
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) || codeOf(err) == CodeConflict
}

func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest) || codeOf(err) == CodeBadRequest
}
