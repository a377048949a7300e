package domain

import "errors"

var (
	// ErrInvalidTransition marks a fulfillment action rejected because of the
	// order's current status or the line item's fulfillment state. The wrapped
	// message is user-facing; no partial mutation survives it.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidInput marks a mutation rejected for contradictory timestamps
	// or missing required fields.
	ErrInvalidInput = errors.New("invalid input")

	ErrNotFound = errors.New("not found")
)
