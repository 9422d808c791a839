// Package result holds the tri-state value every use case hands to the
// presentation layer: loading, success or error.
package result

import (
	apperrors "nearbasket/pkg/errors"
)

type State int

const (
	StateLoading State = iota
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	}
	return "unknown"
}

const genericMessage = "An unexpected error occurred"

type Result[T any] struct {
	state State
	data  T
	err   error
}

func Loading[T any]() Result[T] {
	return Result[T]{state: StateLoading}
}

func Success[T any](data T) Result[T] {
	return Result[T]{state: StateSuccess, data: data}
}

func Failure[T any](err error) Result[T] {
	if err == nil {
		err = apperrors.Internal(genericMessage, nil)
	}
	return Result[T]{state: StateError, err: err}
}

// From folds a (value, error) pair into a Result.
func From[T any](data T, err error) Result[T] {
	if err != nil {
		return Failure[T](err)
	}
	return Success(data)
}

func (r Result[T]) State() State    { return r.state }
func (r Result[T]) IsLoading() bool { return r.state == StateLoading }
func (r Result[T]) IsSuccess() bool { return r.state == StateSuccess }
func (r Result[T]) IsError() bool   { return r.state == StateError }
func (r Result[T]) Data() T         { return r.data }
func (r Result[T]) Err() error      { return r.err }

// Unwrap returns the (value, error) pair. Loading unwraps to the zero value
// and a nil error.
func (r Result[T]) Unwrap() (T, error) {
	return r.data, r.err
}

// Message is the customer-facing text of an error result.
func (r Result[T]) Message() string {
	if r.state != StateError {
		return ""
	}
	if appErr, ok := apperrors.As(r.err); ok {
		return appErr.Message
	}
	return genericMessage
}

// Retryable tells the presentation layer whether to offer a retry affordance.
func (r Result[T]) Retryable() bool {
	return r.state == StateError && apperrors.Retryable(r.err)
}

// Match forces callers to handle all three states.
func Match[T, R any](r Result[T], onLoading func() R, onSuccess func(T) R, onError func(error) R) R {
	switch r.state {
	case StateSuccess:
		return onSuccess(r.data)
	case StateError:
		return onError(r.err)
	default:
		return onLoading()
	}
}

func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	switch r.state {
	case StateSuccess:
		return Success(f(r.data))
	case StateError:
		return Failure[U](r.err)
	default:
		return Loading[U]()
	}
}
