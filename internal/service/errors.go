package service

import (
	"fmt"
	"strings"
)

// The four failure classes surfaced to handlers. None are retried
// automatically; handlers map them onto HTTP statuses.

// ValidationError reports bad input shape or range. The caller can correct
// it locally; nothing was written.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Shortfall carries the exact numbers for one insufficient item.
type Shortfall struct {
	ItemName  string `json:"item_name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// AvailabilityError reports a business-rule conflict: requested quantities
// exceed what is free across the requested date range. The user must change
// quantity or dates.
type AvailabilityError struct {
	Shortfalls []Shortfall
}

func (e *AvailabilityError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("%s (need %d, only %d available)", s.ItemName, s.Requested, s.Available))
	}
	return "insufficient inventory for: " + strings.Join(parts, ", ")
}

// ConstraintError reports a referential-integrity conflict, e.g. deleting a
// rental that has linked incident reports. Message includes the remediation.
type ConstraintError struct {
	Message string
}

func (e *ConstraintError) Error() string {
	return e.Message
}

// StoreError wraps a backend failure. The operation was abandoned; retrying
// is the user's manual action.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}
