// Package async holds the operation state shared by the session and content
// flows: a tagged union of Idle, Loading, Success and Failure, plus a
// sequence-guarded holder that ignores results from superseded requests.
package async

import "fmt"

// Status tags which variant a State holds.
type Status int

const (
	Idle Status = iota
	Loading
	Success
	Failure
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// State is an immutable value. Value is only meaningful for Success and Err
// only for Failure.
type State[T any] struct {
	status Status
	value  T
	err    error
}

func NewIdle[T any]() State[T] {
	return State[T]{status: Idle}
}

func NewLoading[T any]() State[T] {
	return State[T]{status: Loading}
}

func NewSuccess[T any](v T) State[T] {
	return State[T]{status: Success, value: v}
}

func NewFailure[T any](err error) State[T] {
	return State[T]{status: Failure, err: err}
}

func (s State[T]) Status() Status  { return s.status }
func (s State[T]) IsIdle() bool    { return s.status == Idle }
func (s State[T]) IsLoading() bool { return s.status == Loading }
func (s State[T]) IsSuccess() bool { return s.status == Success }
func (s State[T]) IsFailure() bool { return s.status == Failure }

// Settled reports whether the operation finished, successfully or not.
func (s State[T]) Settled() bool {
	return s.status == Success || s.status == Failure
}

// Value returns the success value and true, or the zero value and false.
func (s State[T]) Value() (T, bool) {
	if s.status != Success {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Err returns the failure, or nil for every other variant.
func (s State[T]) Err() error {
	if s.status != Failure {
		return nil
	}
	return s.err
}
