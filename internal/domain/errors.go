package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSection: boarding/alighting stop unknown, or not travelling forward.
	ErrInvalidSection = errors.New("invalid section")
	// ErrInvalidSeatCount: requested seats outside [MinSeats, MaxSeats].
	ErrInvalidSeatCount = errors.New("invalid seat count")
	// ErrCapacityExceeded: requested seats exceed the trip's remaining seats.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// CapacityError carries the computed availability so callers can show it.
type CapacityError struct {
	Requested int
	Available int
}

func (e CapacityError) Error() string {
	return fmt.Sprintf("only %d seat(s) available, %d requested", e.Available, e.Requested)
}

func (e CapacityError) Unwrap() error { return ErrCapacityExceeded }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

// AsCapacity reports whether err is a CapacityError and returns it.
func AsCapacity(err error) (CapacityError, bool) {
	var target CapacityError
	ok := errors.As(err, &target)
	return target, ok
}
