package domain

import (
	"errors"
	"fmt"
)

// ValidationError marks input that was rejected and must not be retried as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError marks a referenced product, session or user that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func NewNotFoundError(resource string, id any) error {
	return &NotFoundError{Resource: resource, ID: fmt.Sprint(id)}
}

// ComputationError wraps a failure to compute a score or similarity for a single entity.
type ComputationError struct {
	Entity string
	ID     string
	Err    error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("failed to compute %s %s: %v", e.Entity, e.ID, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}

func NewComputationError(entity string, id any, err error) error {
	return &ComputationError{Entity: entity, ID: fmt.Sprint(id), Err: err}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsComputation(err error) bool {
	var ce *ComputationError
	return errors.As(err, &ce)
}
