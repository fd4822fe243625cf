package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/taskfolio/taskfolio-api/internal/api/shared"
	"github.com/taskfolio/taskfolio-api/internal/domain"
	"github.com/taskfolio/taskfolio-api/internal/service"
)

// CreateTaskRequest represents the request body for creating a new task.
type CreateTaskRequest struct {
	Title       string       `json:"title"       validate:"required,max=255"`
	Description *string      `json:"description" validate:"omitempty,max=5000"`
	Deadline    *domain.Date `json:"deadline"`
	Assignee    *string      `json:"assignee"    validate:"omitempty,max=100"`
	Status      *string      `json:"status"      validate:"omitempty,oneof=pending in_progress completed"`
}

// Validate checks the create payload against the field rules and returns
// the normalized service parameters: title trimmed, status defaulted to
// pending when absent. The deadline must be today or later; past dates are
// rejected on creation only. On failure it returns a ValidationError
// carrying every violation found.
func (r *CreateTaskRequest) Validate(today domain.Date) (service.CreateTaskParams, error) {
	var violations []domain.FieldViolation

	if err := shared.Validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return service.CreateTaskParams{}, err
		}
		violations = violationsFromValidator(verrs)
	}

	title := strings.TrimSpace(r.Title)
	if r.Title != "" && title == "" {
		violations = append(violations, domain.FieldViolation{
			Field:   "title",
			Message: "must not be blank",
		})
	}

	if r.Deadline != nil && r.Deadline.Before(today) {
		violations = append(violations, domain.FieldViolation{
			Field:   "deadline",
			Message: "must be today or a future date",
		})
	}

	if len(violations) > 0 {
		return service.CreateTaskParams{}, domain.NewValidationError(violations...)
	}

	status := domain.TaskStatusPending
	if r.Status != nil {
		status = domain.TaskStatus(*r.Status)
	}

	return service.CreateTaskParams{
		Title:       title,
		Description: r.Description,
		Deadline:    r.Deadline,
		Assignee:    r.Assignee,
		Status:      status,
	}, nil
}

// UpdateTaskRequest represents the request body for a partial task update.
// Decoding tracks which recognized fields were present in the JSON body so
// that an absent field, an explicit null, and a value are three different
// things. Unrecognized fields are ignored.
type UpdateTaskRequest struct {
	Title       *string
	Description *string
	Deadline    *domain.Date
	Assignee    *string
	Status      *string

	present map[string]bool
}

// UnmarshalJSON implements json.Unmarshaler, recording field presence.
func (r *UpdateTaskRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.present = make(map[string]bool, len(raw))
	for key, value := range raw {
		var dst any
		switch key {
		case "title":
			dst = &r.Title
		case "description":
			dst = &r.Description
		case "deadline":
			dst = &r.Deadline
		case "assignee":
			dst = &r.Assignee
		case "status":
			dst = &r.Status
		default:
			continue
		}
		r.present[key] = true
		if err := json.Unmarshal(value, dst); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
	}

	return nil
}

// HasUpdates reports whether any recognized field was present in the body.
func (r *UpdateTaskRequest) HasUpdates() bool {
	return len(r.present) > 0
}

// Validate checks the update payload and returns the normalized service
// parameters. Every field is optional; title and status must not be null
// when present (NOT NULL columns), while description, deadline and assignee
// accept explicit null to clear the stored value. Unlike creation, a past
// deadline is allowed so existing deadlines can be moved backward.
func (r *UpdateTaskRequest) Validate() (service.UpdateTaskParams, error) {
	var violations []domain.FieldViolation
	var params service.UpdateTaskParams

	if r.present["title"] {
		switch {
		case r.Title == nil:
			violations = append(violations, domain.FieldViolation{
				Field:   "title",
				Message: "must not be null",
			})
		case utf8.RuneCountInString(*r.Title) > domain.TaskTitleMaxLen:
			violations = append(violations, domain.FieldViolation{
				Field:   "title",
				Message: fmt.Sprintf("must be at most %d characters", domain.TaskTitleMaxLen),
			})
		default:
			title := strings.TrimSpace(*r.Title)
			if title == "" {
				violations = append(violations, domain.FieldViolation{
					Field:   "title",
					Message: "must not be blank",
				})
			} else {
				params.Title = &title
			}
		}
	}

	if r.present["status"] {
		switch {
		case r.Status == nil:
			violations = append(violations, domain.FieldViolation{
				Field:   "status",
				Message: "must not be null",
			})
		case !domain.TaskStatus(*r.Status).IsValid():
			violations = append(violations, domain.FieldViolation{
				Field:   "status",
				Message: "must be one of: pending, in_progress, completed",
			})
		default:
			status := domain.TaskStatus(*r.Status)
			params.Status = &status
		}
	}

	if r.present["description"] {
		if r.Description != nil && utf8.RuneCountInString(*r.Description) > domain.TaskDescriptionMaxLen {
			violations = append(violations, domain.FieldViolation{
				Field:   "description",
				Message: fmt.Sprintf("must be at most %d characters", domain.TaskDescriptionMaxLen),
			})
		} else {
			params.Description = r.Description
			params.DescriptionSet = true
		}
	}

	if r.present["deadline"] {
		params.Deadline = r.Deadline
		params.DeadlineSet = true
	}

	if r.present["assignee"] {
		if r.Assignee != nil && utf8.RuneCountInString(*r.Assignee) > domain.TaskAssigneeMaxLen {
			violations = append(violations, domain.FieldViolation{
				Field:   "assignee",
				Message: fmt.Sprintf("must be at most %d characters", domain.TaskAssigneeMaxLen),
			})
		} else {
			params.Assignee = r.Assignee
			params.AssigneeSet = true
		}
	}

	if len(violations) > 0 {
		return service.UpdateTaskParams{}, domain.NewValidationError(violations...)
	}

	return params, nil
}

// TaskResponse represents the response data for a task.
type TaskResponse struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	Deadline    *domain.Date `json:"deadline"`
	Assignee    *string      `json:"assignee"`
	Status      string       `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TaskListResponse represents one page of tasks plus pagination metadata.
type TaskListResponse struct {
	Tasks      []TaskResponse `json:"tasks"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Size       int            `json:"size"`
	TotalPages int            `json:"total_pages"`
	HasNext    bool           `json:"has_next"`
	HasPrev    bool           `json:"has_prev"`
}

// TaskCreateResponse is the body returned for a successful creation.
type TaskCreateResponse struct {
	Message string       `json:"message"`
	Task    TaskResponse `json:"task"`
}

// TaskDeleteResponse is the body returned for a successful deletion,
// carrying a snapshot of the removed task.
type TaskDeleteResponse struct {
	Message     string       `json:"message"`
	DeletedTask TaskResponse `json:"deleted_task"`
}

// TaskDeleteConfirmationResponse is the body for the pre-delete
// confirmation endpoint.
type TaskDeleteConfirmationResponse struct {
	Task    TaskResponse `json:"task"`
	Warning string       `json:"warning"`
}

// taskToResponse converts a domain.Task to a TaskResponse.
func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Deadline:    task.Deadline,
		Assignee:    task.Assignee,
		Status:      string(task.Status),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// tasksToResponses converts a slice of tasks, always yielding a non-nil
// slice so the JSON field is [] rather than null.
func tasksToResponses(tasks []*domain.Task) []TaskResponse {
	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, taskToResponse(task))
	}
	return responses
}
