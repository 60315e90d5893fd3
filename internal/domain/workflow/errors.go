package workflow

import "errors"

var (
	// ErrIllegalTransition is returned when a status transition is not in the table
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrInvalidStatus is returned when a status is not a lifecycle member
	ErrInvalidStatus = errors.New("invalid status")
)
