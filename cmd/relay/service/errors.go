package service

import (
	"errors"
	"fmt"
)

// ErrPublicURLUnavailable means media was stored but no public base URL is
// configured, so the platform could never fetch it
var ErrPublicURLUnavailable = errors.New("no public URL base configured for stored media")

// ValidationError is a bad or missing request field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// AudioError means the synthesized audio could not be measured
type AudioError struct {
	Err error
}

func (e *AudioError) Error() string {
	return fmt.Sprintf("measure synthesized audio: %v", e.Err)
}

func (e *AudioError) Unwrap() error {
	return e.Err
}
