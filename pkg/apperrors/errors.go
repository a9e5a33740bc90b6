package apperrors

import (
	"errors"
	"fmt"
)

// Error codes surfaced to API clients
const (
	CodeNotFound   = "NOT_FOUND"
	CodeValidation = "VALIDATION_ERROR"
	CodeConflict   = "CONFLICT"
	CodeDatabase   = "DATABASE_ERROR"
)

// NotFoundError is returned when a referenced resource does not exist
type NotFoundError struct {
	ResourceType string
	ResourceID   string
}

func NewNotFound(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{ResourceType: resourceType, ResourceID: resourceID}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID '%s' not found", e.ResourceType, e.ResourceID)
}

func (e *NotFoundError) Extensions() map[string]interface{} {
	return map[string]interface{}{
		"code":         CodeNotFound,
		"resourceType": e.ResourceType,
		"resourceId":   e.ResourceID,
	}
}

// ValidationError is returned when caller input is rejected before any write
type ValidationError struct {
	Message string
}

func NewValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": CodeValidation}
}

// ConflictError is returned when a write collides with existing state
type ConflictError struct {
	ResourceType string
	Identifier   string
}

func NewConflict(resourceType, identifier string) *ConflictError {
	return &ConflictError{ResourceType: resourceType, Identifier: identifier}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with identifier '%s' already exists or was modified concurrently", e.ResourceType, e.Identifier)
}

func (e *ConflictError) Extensions() map[string]interface{} {
	return map[string]interface{}{
		"code":         CodeConflict,
		"resourceType": e.ResourceType,
		"identifier":   e.Identifier,
	}
}

// StorageError wraps a fault from the underlying store
type StorageError struct {
	Operation string
	Err       error
}

func NewStorage(operation string, err error) *StorageError {
	return &StorageError{Operation: operation, Err: err}
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("database operation '%s' failed", e.Operation)
	}
	return fmt.Sprintf("database operation '%s' failed: %v", e.Operation, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Extensions omits the underlying error text
func (e *StorageError) Extensions() map[string]interface{} {
	return map[string]interface{}{
		"code":      CodeDatabase,
		"operation": e.Operation,
		"details":   "A database error occurred",
	}
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsStorage(err error) bool {
	var target *StorageError
	return errors.As(err, &target)
}

// Code returns the client-facing code for err, or "" for unclassified errors
func Code(err error) string {
	switch {
	case IsNotFound(err):
		return CodeNotFound
	case IsValidation(err):
		return CodeValidation
	case IsConflict(err):
		return CodeConflict
	case IsStorage(err):
		return CodeDatabase
	}
	return ""
}
