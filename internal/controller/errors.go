package controller

import "errors"

var (
	// ErrInvalidInput rejects a non-positive, non-finite or oversized minutes value.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTransition rejects a command the current state does not allow.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrPersistence reports a failed read or write of the session record.
	ErrPersistence = errors.New("persistence failure")

	// ErrGateway reports a failed enable or disable of the rule set.
	ErrGateway = errors.New("rule gateway failure")
)
