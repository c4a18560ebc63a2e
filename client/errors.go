package client

import (
	"errors"
	"event-ticket/common/roster"
	"fmt"
)

// ErrUnauthorized means the session is gone; the caller has to sign in again.
var ErrUnauthorized = errors.New("session expired, please sign in again")

// ValidationError is shared with the server so pre-flight and server-side findings look the same.
type ValidationError = roster.ValidationError

type OrderCreationError struct {
	EventId int64
	Status  int
	Message string
	Err     error
}

func (e *OrderCreationError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("payment order for event %d failed (status %d): %s", e.EventId, e.Status, e.Message)
	}
	return fmt.Sprintf("payment order for event %d failed: %v", e.EventId, e.Err)
}

func (e *OrderCreationError) Unwrap() error { return e.Err }

type VerificationError struct {
	OrderId string
	Message string
	Err     error
}

func (e *VerificationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("payment %s not verified: %s", e.OrderId, e.Message)
	}
	return fmt.Sprintf("payment %s not verified: %v", e.OrderId, e.Err)
}

func (e *VerificationError) Unwrap() error { return e.Err }

// ConflictError reports an existing registration. Local is set when the refusal came from cached
// state and no request was sent.
type ConflictError struct {
	EventId int64
	Message string
	Local   bool
}

func (e *ConflictError) Error() string {
	if e.Local {
		return fmt.Sprintf("already registered for event %d", e.EventId)
	}
	return fmt.Sprintf("event %d: %s", e.EventId, e.Message)
}

type TransientFetchError struct {
	Failures int
	Err      error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("registrations unavailable after %d attempts: %v", e.Failures, e.Err)
}

func (e *TransientFetchError) Unwrap() error { return e.Err }

type RenderError struct {
	RegistrationId string
	Err            error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("ticket %s could not be saved: %v; take a screenshot of the QR code from My Registrations instead",
		e.RegistrationId, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
