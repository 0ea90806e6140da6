package utils

import (
	"errors"
	"fmt"
)

// Sentinel errors used to map pipeline failures onto API responses.
var (
	// ErrInvalidDataset marks datasets rejected by validation.
	ErrInvalidDataset = errors.New("invalid dataset")
	// ErrInvalidParams marks out-of-range tuning parameters.
	ErrInvalidParams = errors.New("invalid parameters")
)

// AppError wraps an operation, human-facing message, and underlying error.
type AppError struct {
	Op  string
	Msg string
	Err error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(op, msg string, err error) error {
	return &AppError{Op: op, Msg: msg, Err: err}
}
