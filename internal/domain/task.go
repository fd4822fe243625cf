package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

// Possible task status values.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// ValidTaskStatuses lists every accepted status value, in declaration order.
// Useful for error messages and request validation.
func ValidTaskStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted}
}

// IsValid reports whether the status is one of the enumerated values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// Field length limits for Task, mirrored by the tasks table schema.
// Limits are in characters, not bytes.
const (
	TaskTitleMaxLen       = 255
	TaskDescriptionMaxLen = 5000
	TaskAssigneeMaxLen    = 100
)

// Common validation errors for Task.
var (
	ErrEmptyTaskTitle         = errors.New("task title cannot be empty")
	ErrTaskTitleTooLong       = errors.New("task title exceeds maximum length")
	ErrTaskDescriptionTooLong = errors.New("task description exceeds maximum length")
	ErrTaskAssigneeTooLong    = errors.New("task assignee exceeds maximum length")
	ErrInvalidTaskStatus      = errors.New("invalid task status")
)

// Task represents a single unit of work tracked by the system. IDs are
// assigned by the store on creation. Description, Deadline and Assignee are
// optional; nil means unset.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Deadline    *Date      `json:"deadline"`
	Assignee    *string    `json:"assignee"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask creates a new Task with the given fields. The title is trimmed of
// leading and trailing whitespace, an empty status defaults to pending, and
// both timestamps are set to the same instant so CreatedAt == UpdatedAt on
// a fresh task. Returns an error if validation fails.
func NewTask(title string, description *string, deadline *Date, assignee *string, status TaskStatus) (*Task, error) {
	if status == "" {
		status = TaskStatusPending
	}

	now := time.Now().UTC()
	task := &Task{
		Title:       strings.TrimSpace(title),
		Description: description,
		Deadline:    deadline,
		Assignee:    assignee,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks the Task's invariants: a non-blank title within limits,
// bounded optional fields, and an enumerated status. Deadline values are
// not range-checked here; the past-date rule applies only to creation
// requests and is enforced at the validation layer.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTaskTitle
	}

	if utf8.RuneCountInString(t.Title) > TaskTitleMaxLen {
		return ErrTaskTitleTooLong
	}

	if t.Description != nil && utf8.RuneCountInString(*t.Description) > TaskDescriptionMaxLen {
		return ErrTaskDescriptionTooLong
	}

	if t.Assignee != nil && utf8.RuneCountInString(*t.Assignee) > TaskAssigneeMaxLen {
		return ErrTaskAssigneeTooLong
	}

	if !t.Status.IsValid() {
		return ErrInvalidTaskStatus
	}

	return nil
}

// Touch refreshes the UpdatedAt timestamp. Called on every successful
// mutation; CreatedAt is never changed after creation.
func (t *Task) Touch() {
	t.UpdatedAt = time.Now().UTC()
}

// IsOverdue reports whether the task is overdue relative to today: its
// deadline has passed and it has not been completed.
func (t *Task) IsOverdue(today Date) bool {
	return t.Deadline != nil && t.Deadline.Before(today) && t.Status != TaskStatusCompleted
}

// Clone returns a deep copy of the task. Used to snapshot row state before
// destructive operations.
func (t *Task) Clone() *Task {
	clone := *t
	if t.Description != nil {
		v := *t.Description
		clone.Description = &v
	}
	if t.Deadline != nil {
		v := *t.Deadline
		clone.Deadline = &v
	}
	if t.Assignee != nil {
		v := *t.Assignee
		clone.Assignee = &v
	}
	return &clone
}
