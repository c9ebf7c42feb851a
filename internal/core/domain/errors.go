package domain

import (
	"errors"
	"fmt"
)

var (
	ErrConnectionFailure = errors.New("product API is unreachable")
	ErrUnexpectedStatus  = errors.New("unexpected status code")
)

// A StatusError is returned when the API answers with a status other than 200.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d", ErrUnexpectedStatus, e.Code)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

type FailureKind string

const (
	NoFailure         FailureKind = ""
	ConnectionFailure FailureKind = "ConnectionFailure"
	UnexpectedStatus  FailureKind = "UnexpectedStatus"
	UnhandledError    FailureKind = "UnhandledError"
)

// FailureOf maps an error returned by a run step to its failure kind.
func FailureOf(err error) FailureKind {
	switch {
	case err == nil:
		return NoFailure
	case errors.Is(err, ErrConnectionFailure):
		return ConnectionFailure
	case errors.Is(err, ErrUnexpectedStatus):
		return UnexpectedStatus
	default:
		return UnhandledError
	}
}

// StatusCodeOf returns the HTTP status carried by err, or 0.
func StatusCodeOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}
