package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrEmptyCart is returned when checkout finds no resolvable cart lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNotOwner is returned when an identity acts on an order it does not own.
	ErrNotOwner = errors.New("order does not belong to this identity")
)

// ValidationError reports a malformed or missing checkout/customer input.
// It is surfaced verbatim to the caller, never silently corrected.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidTransitionError names the current and requested states of an
// illegal status change attempt.
type InvalidTransitionError struct {
	From OrderStatus `json:"from"`
	To   OrderStatus `json:"to"`
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}
