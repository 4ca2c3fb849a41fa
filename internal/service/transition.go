package service

import (
	"errors"
	"fmt"
)

// ErrInvalidDate marks payloads whose date fields fail to parse or form an
// impossible range.
var ErrInvalidDate = errors.New("invalid date")

// Actor identifies the authenticated user performing an operation, as
// recorded on every appended event.
type Actor struct {
	ID   uint
	Role string
}

// InvalidTransitionError is returned when a status change is not allowed
// by the entity's transition rules. Rejecting the same transition twice
// yields the same error and leaves the entity untouched.
type InvalidTransitionError struct {
	EntityType string
	From       string
	To         string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition from %q to %q", e.EntityType, e.From, e.To)
}
