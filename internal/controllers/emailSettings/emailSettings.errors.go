package emailSettingsController

import (
	"errors"
	"fmt"
)

var (
	ErrNoActor          = errors.New("no actor in session")
	ErrNotLoaded        = errors.New("email settings have not been loaded")
	ErrSaveInProgress   = errors.New("email settings save already in progress")
	ErrUnknownField     = errors.New("unknown email settings field")
	ErrProviderNotReady = errors.New("email delivery provider is not configured")
)

// ValidationError is raised before any backend or provider call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PersistenceError wraps a failed load or save against the store.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("email settings persistence failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// DeliveryError carries the provider's own message for a failed test send.
type DeliveryError struct {
	Message string
	Err     error
}

func (e *DeliveryError) Error() string {
	return e.Message
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
