package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrPostNotFound also covers hidden posts the actor may not see
	ErrPostNotFound = errors.New("post not found")

	ErrCommentNotFound = errors.New("comment not found")

	ErrMediaNotFound = errors.New("media not found")

	// ErrSanghNotFound indicates the parent Sangh of a new post doesn't exist
	ErrSanghNotFound = errors.New("sangh not found")

	ErrNotAuthorized = errors.New("not authorized")

	ErrUnauthenticated = errors.New("authentication required")
)

type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StorageError wraps a failed blob or document write on the primary path.
type StorageError struct {
	Op  string
	Err error
}

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrPostNotFound) ||
		errors.Is(err, ErrCommentNotFound) ||
		errors.Is(err, ErrMediaNotFound) ||
		errors.Is(err, ErrSanghNotFound)
}

func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

func IsStorageError(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr)
}
