package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/taskfolio/taskfolio-api/internal/domain"
	"github.com/taskfolio/taskfolio-api/internal/store"
)

// CreateTaskParams is the normalized payload for creating a task. The
// validation layer produces it: Title is already trimmed, Status already
// checked against the enum (empty means default pending).
type CreateTaskParams struct {
	Title       string
	Description *string
	Deadline    *domain.Date
	Assignee    *string
	Status      domain.TaskStatus
}

// UpdateTaskParams is the normalized payload for a partial update. Fields
// absent from the request are left untouched; fields explicitly present are
// overwritten. Title and Status are NOT NULL columns, so presence implies a
// non-nil value; the nullable fields carry an explicit Set flag so that a
// JSON null (clear the field) is distinguishable from absence.
type UpdateTaskParams struct {
	Title  *string
	Status *domain.TaskStatus

	Description    *string
	DescriptionSet bool

	Deadline    *domain.Date
	DeadlineSet bool

	Assignee    *string
	AssigneeSet bool
}

// HasUpdates reports whether any recognized field is present.
func (p UpdateTaskParams) HasUpdates() bool {
	return p.Title != nil || p.Status != nil ||
		p.DescriptionSet || p.DeadlineSet || p.AssigneeSet
}

// TaskPage is one page of list results plus the pagination bookkeeping
// derived from the total match count.
type TaskPage struct {
	Tasks      []*domain.Task
	Total      int64
	Page       int
	Size       int
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// TaskService provides task-related operations.
type TaskService interface {
	// CreateTask creates a new task and returns it with its assigned ID
	// and timestamps.
	CreateTask(ctx context.Context, params CreateTaskParams) (*domain.Task, error)

	// GetTask retrieves a task by its ID.
	// Returns store.ErrTaskNotFound if the task does not exist.
	GetTask(ctx context.Context, id int64) (*domain.Task, error)

	// ListTasks returns the page of tasks matching the filter together
	// with the total match count and derived pagination flags.
	ListTasks(ctx context.Context, filter store.TaskFilter, page store.Page) (*TaskPage, error)

	// UpdateTask applies a partial update to an existing task and returns
	// the updated task. Returns ErrNoFieldsToUpdate if params carry no
	// recognized fields, and store.ErrTaskNotFound if the task is absent.
	UpdateTask(ctx context.Context, id int64, params UpdateTaskParams) (*domain.Task, error)

	// DeleteTask removes a task and returns a snapshot of the row as it
	// was before deletion. Returns store.ErrTaskNotFound if absent.
	DeleteTask(ctx context.Context, id int64) (*domain.Task, error)

	// DeleteConfirmation returns the task and a human-readable warning
	// describing the consequences of deleting it.
	// Returns store.ErrTaskNotFound if the task does not exist.
	DeleteConfirmation(ctx context.Context, id int64) (*domain.Task, string, error)
}

// taskService is the concrete TaskService backed by a TaskStore. Mutating
// operations run inside a single database transaction scoped to the call.
type taskService struct {
	taskStore store.TaskStore
	db        *sql.DB
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskStore store.TaskStore, db *sql.DB, logger *slog.Logger) (TaskService, error) {
	if taskStore == nil {
		return nil, fmt.Errorf("task store cannot be nil")
	}
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &taskService{
		taskStore: taskStore,
		db:        db,
		logger:    logger.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask implements TaskService.CreateTask.
func (s *taskService) CreateTask(ctx context.Context, params CreateTaskParams) (*domain.Task, error) {
	task, err := domain.NewTask(params.Title, params.Description, params.Deadline, params.Assignee, params.Status)
	if err != nil {
		return nil, newTaskServiceError("create_task", "invalid task data", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.taskStore.WithTx(tx).Create(ctx, task)
	})
	if err != nil {
		return nil, newTaskServiceError("create_task", "failed to save task", err)
	}

	s.logger.Info("task created",
		slog.Int64("task_id", task.ID),
		slog.String("status", string(task.Status)))
	return task, nil
}

// GetTask implements TaskService.GetTask.
func (s *taskService) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		return nil, newTaskServiceError("get_task", "failed to load task", err)
	}
	return task, nil
}

// ListTasks implements TaskService.ListTasks.
func (s *taskService) ListTasks(ctx context.Context, filter store.TaskFilter, page store.Page) (*TaskPage, error) {
	tasks, err := s.taskStore.List(ctx, filter, page)
	if err != nil {
		return nil, newTaskServiceError("list_tasks", "failed to list tasks", err)
	}

	total, err := s.taskStore.Count(ctx, filter)
	if err != nil {
		return nil, newTaskServiceError("list_tasks", "failed to count tasks", err)
	}

	totalPages := totalPages(total, page.Size)

	return &TaskPage{
		Tasks:      tasks,
		Total:      total,
		Page:       page.Number,
		Size:       page.Size,
		TotalPages: totalPages,
		HasNext:    page.Number < totalPages,
		HasPrev:    page.Number > 1,
	}, nil
}

// UpdateTask implements TaskService.UpdateTask. The read, merge, and write
// happen inside one transaction so a failure mid-update leaves the prior
// row state intact.
func (s *taskService) UpdateTask(ctx context.Context, id int64, params UpdateTaskParams) (*domain.Task, error) {
	if !params.HasUpdates() {
		return nil, ErrNoFieldsToUpdate
	}

	var updated *domain.Task
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.taskStore.WithTx(tx)

		task, err := txStore.GetByID(ctx, id)
		if err != nil {
			return err
		}

		applyTaskUpdate(task, params)
		task.Touch()

		if err := txStore.Update(ctx, task); err != nil {
			return err
		}

		updated = task
		return nil
	})
	if err != nil {
		return nil, newTaskServiceError("update_task", "failed to update task", err)
	}

	s.logger.Info("task updated",
		slog.Int64("task_id", updated.ID),
		slog.String("status", string(updated.Status)))
	return updated, nil
}

// DeleteTask implements TaskService.DeleteTask. The row is snapshotted and
// deleted inside one transaction; the snapshot is returned so callers can
// report what was removed.
func (s *taskService) DeleteTask(ctx context.Context, id int64) (*domain.Task, error) {
	var snapshot *domain.Task
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.taskStore.WithTx(tx)

		task, err := txStore.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := txStore.Delete(ctx, id); err != nil {
			return err
		}

		snapshot = task.Clone()
		return nil
	})
	if err != nil {
		return nil, newTaskServiceError("delete_task", "failed to delete task", err)
	}

	s.logger.Info("task deleted", slog.Int64("task_id", snapshot.ID))
	return snapshot, nil
}

// DeleteConfirmation implements TaskService.DeleteConfirmation. Read-only;
// the warning always carries the base clause, with at most one extra clause
// appended: in-progress takes priority over a not-yet-passed deadline.
func (s *taskService) DeleteConfirmation(ctx context.Context, id int64) (*domain.Task, string, error) {
	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		return nil, "", newTaskServiceError("delete_confirmation", "failed to load task", err)
	}

	warning := fmt.Sprintf("Task %q will be deleted. This action cannot be undone.", task.Title)
	today := domain.Today()
	if task.Status == domain.TaskStatusInProgress {
		warning += " This task is currently in progress."
	} else if task.Deadline != nil && !task.Deadline.Before(today) {
		warning += " This task's deadline has not passed yet."
	}

	return task, warning, nil
}

// applyTaskUpdate merges the present fields of params into the task.
func applyTaskUpdate(task *domain.Task, params UpdateTaskParams) {
	if params.Title != nil {
		task.Title = *params.Title
	}
	if params.Status != nil {
		task.Status = *params.Status
	}
	if params.DescriptionSet {
		task.Description = params.Description
	}
	if params.DeadlineSet {
		task.Deadline = params.Deadline
	}
	if params.AssigneeSet {
		task.Assignee = params.Assignee
	}
}

// totalPages derives the page count: ceil(total/size) with a floor of one
// page when there are no matches.
func totalPages(total int64, size int) int {
	if total <= 0 {
		return 1
	}
	pages := (total + int64(size) - 1) / int64(size)
	return int(pages)
}
