package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by stores, guards and the resource engine.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
)

// FieldError describes one invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries field-level failures and unwraps to ErrValidation.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

// ConflictError reports a uniqueness violation on a set of fields.
type ConflictError struct {
	Kind   Kind
	Fields []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("duplicate %s for fields %s", e.Kind, strings.Join(e.Fields, ","))
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// ForbiddenError is returned by guard rules.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string { return e.Reason }

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// Forbidden builds a ForbiddenError.
func Forbidden(reason string) error {
	return &ForbiddenError{Reason: reason}
}

// NotFoundError names the missing entity.
type NotFoundError struct {
	Ref     EntityRef
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s not found", e.Ref.Kind, e.Ref.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound builds a NotFoundError for a reference.
func NotFound(kind Kind, id string) error {
	return &NotFoundError{Ref: EntityRef{Kind: kind, ID: id}}
}
