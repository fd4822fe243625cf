package service

import (
	"errors"
	"fmt"

	"github.com/taskfolio/taskfolio-api/internal/store"
)

// Common sentinel errors for TaskService.
var (
	// ErrNoFieldsToUpdate indicates an update request that contains no
	// recognized fields. Such requests are a client error, not a no-op.
	ErrNoFieldsToUpdate = errors.New("no fields to update")
)

// TaskServiceError wraps errors from the task service with context.
type TaskServiceError struct {
	// Operation is the operation that failed (e.g., "create_task").
	Operation string
	// Message is a human-readable description of the error.
	Message string
	// Err is the underlying error that caused the failure.
	Err error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// newTaskServiceError wraps an error with operation context. Known sentinel
// and classification errors pass through unwrapped so callers can match
// them at the boundary.
func newTaskServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNoFieldsToUpdate) || store.IsNotFoundError(err) {
		return err
	}
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
