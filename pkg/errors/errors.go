package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeBadRequest      = "BAD_REQUEST"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeConflict        = "CONFLICT"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeRemote          = "REMOTE_ERROR"
	CodeTimeout         = "TIMEOUT"
	CodeDecode          = "DECODE_ERROR"
	CodeLocalStorage    = "LOCAL_STORAGE_ERROR"
	CodeInternal        = "INTERNAL_ERROR"
)

// AppError is the single error type crossing layer boundaries. Message is
// always safe to show to the customer; Status carries the remote HTTP status
// when the error came from the backend.
type AppError struct {
	Code    string
	Message string
	Status  int
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

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func Validation(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    CodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

func Unauthorized(message string, err error) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

func Forbidden(message string, err error) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
		Status:  http.StatusForbidden,
		Err:     err,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Status:  http.StatusConflict,
	}
}

func TooManyRequests(message string, wait time.Duration) *AppError {
	if wait > 0 {
		message = fmt.Sprintf("%s, try again in %d seconds", message, int(wait.Round(time.Second)/time.Second))
	}
	return &AppError{
		Code:    CodeTooManyRequests,
		Message: message,
		Status:  http.StatusTooManyRequests,
	}
}

// Remote wraps a transport failure talking to the hosted backend.
func Remote(message string, status int, err error) *AppError {
	return &AppError{
		Code:    CodeRemote,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func Timeout(message string, err error) *AppError {
	return &AppError{
		Code:    CodeTimeout,
		Message: message,
		Status:  http.StatusGatewayTimeout,
		Err:     err,
	}
}

func Decode(message string, err error) *AppError {
	return &AppError{
		Code:    CodeDecode,
		Message: message,
		Err:     err,
	}
}

// LocalStorage wraps an on-device cache failure. Fatal to the operation only.
func LocalStorage(message string, err error) *AppError {
	return &AppError{
		Code:    CodeLocalStorage,
		Message: message,
		Err:     err,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// As is errors.As for the common case.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsRemote reports whether err came from the remote boundary, i.e. whether a
// read path may fall back to cached data.
func IsRemote(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	appErr, ok := As(err)
	if !ok {
		return false
	}
	switch appErr.Code {
	case CodeRemote, CodeTimeout, CodeDecode:
		return true
	}
	return false
}

// Retryable reports whether a user-initiated retry can plausibly succeed.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if IsRemote(err) {
		return true
	}
	return Is(err, CodeLocalStorage) || Is(err, CodeTooManyRequests)
}
