package store

import (
	"context"
	"database/sql"

	"github.com/taskfolio/taskfolio-api/internal/domain"
)

// TaskFilter holds the list-query predicates. All set predicates are
// combined with logical AND; the zero value matches every task.
type TaskFilter struct {
	// Status restricts results to tasks with exactly this status.
	Status *domain.TaskStatus

	// Assignee restricts results to tasks whose assignee contains this
	// substring, case-insensitively. Empty means no assignee predicate.
	Assignee string

	// DeadlineFrom and DeadlineTo bound the deadline inclusively; each is
	// independently optional.
	DeadlineFrom *domain.Date
	DeadlineTo   *domain.Date

	// OverdueOnly restricts results to tasks whose deadline is strictly
	// before Today and whose status is not completed.
	OverdueOnly bool

	// Today is the reference date for OverdueOnly. It is supplied by the
	// caller so the query stays deterministic.
	Today domain.Date
}

// Page describes a one-based page window over an ordered result set.
type Page struct {
	Number int
	Size   int
}

// Offset returns the number of rows to skip for this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store and assigns its ID; the task's
	// ID field is populated on return. It handles domain validation
	// internally and returns validation errors if the data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// List retrieves the page window of tasks matching the filter, ordered
	// by creation time descending with ties in insertion order. Returns an
	// empty slice if no tasks match.
	List(ctx context.Context, filter TaskFilter, page Page) ([]*domain.Task, error)

	// Count returns the total number of tasks matching the filter,
	// ignoring pagination.
	Count(ctx context.Context, filter TaskFilter) (int64, error)

	// Update persists the full state of an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	// Returns validation errors if the task data is invalid.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task permanently.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller,
	// typically a service wrapping several calls in RunInTransaction.
	WithTx(tx *sql.Tx) TaskStore
}
