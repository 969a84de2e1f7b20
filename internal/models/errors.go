package models

import "errors"

// ErrNotFound is returned when a project or task id is not known.
var ErrNotFound = errors.New("not found")

// ValidationError reports a field value rejected before any state change.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
