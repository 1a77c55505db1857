package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrCorruptRecord       = errors.New("corrupt record")
	ErrOperationInProgress = errors.New("operation already in progress")
)

// ValidationError reports input rejected by a validator. Nothing was mutated.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// AuthMismatchError reports a wrong code or a phone that does not match the
// staged challenge. The challenge is still open.
type AuthMismatchError struct {
	Reason string
}

func (e *AuthMismatchError) Error() string {
	return e.Reason
}

// NotFoundError reports a ledger id that does not resolve.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// StepLockedError reports an onboarding operation attempted before its gate
// opened. Redirect names the step the caller should go to instead.
type StepLockedError struct {
	Want     string
	Redirect string
}

func (e *StepLockedError) Error() string {
	return fmt.Sprintf("step %s is locked, continue at %s", e.Want, e.Redirect)
}
