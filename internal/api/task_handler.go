package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/taskfolio/taskfolio-api/internal/api/shared"
	"github.com/taskfolio/taskfolio-api/internal/domain"
	"github.com/taskfolio/taskfolio-api/internal/platform/logger"
	"github.com/taskfolio/taskfolio-api/internal/redact"
	"github.com/taskfolio/taskfolio-api/internal/service"
	"github.com/taskfolio/taskfolio-api/internal/store"
)

// List query bounds and defaults.
const (
	defaultPage = 1
	defaultSize = 20
	maxSize     = 100
)

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithErrorAndLog(w, r, http.StatusUnprocessableEntity, "Invalid request body", err)
		return
	}

	params, err := req.Validate(domain.Today())
	if err != nil {
		h.respondValidationFailure(w, r, log, err)
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), params)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	log.Debug("task created", slog.Int64("task_id", task.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, TaskCreateResponse{
		Message: "Task created successfully",
		Task:    taskToResponse(task),
	})
}

// GetTask handles GET /tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := h.pathTaskID(w, r, log)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// ListTasks handles GET /tasks requests with filtering and pagination.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	filter, page, err := parseListQuery(r)
	if err != nil {
		log.Debug("invalid list query", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.taskService.ListTasks(r.Context(), filter, page)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Tasks:      tasksToResponses(result.Tasks),
		Total:      result.Total,
		Page:       result.Page,
		Size:       result.Size,
		TotalPages: result.TotalPages,
		HasNext:    result.HasNext,
		HasPrev:    result.HasPrev,
	})
}

// UpdateTask handles PUT /tasks/{id} requests (partial update).
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := h.pathTaskID(w, r, log)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.Int64("task_id", id))
		shared.RespondWithErrorAndLog(w, r, http.StatusUnprocessableEntity, "Invalid request body", err)
		return
	}

	if !req.HasUpdates() {
		log.Debug("update request with no fields", slog.Int64("task_id", id))
		shared.RespondWithError(w, r, http.StatusBadRequest, "No fields to update")
		return
	}

	params, err := req.Validate()
	if err != nil {
		h.respondValidationFailure(w, r, log, err)
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), id, params)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	log.Debug("task updated", slog.Int64("task_id", task.ID))
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /tasks/{id} requests.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := h.pathTaskID(w, r, log)
	if !ok {
		return
	}

	task, err := h.taskService.DeleteTask(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	log.Debug("task deleted", slog.Int64("task_id", id))
	shared.RespondWithJSON(w, r, http.StatusOK, TaskDeleteResponse{
		Message:     fmt.Sprintf("Task %q deleted successfully", task.Title),
		DeletedTask: taskToResponse(task),
	})
}

// GetDeleteConfirmation handles GET /tasks/{id}/delete-confirmation requests.
func (h *TaskHandler) GetDeleteConfirmation(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := h.pathTaskID(w, r, log)
	if !ok {
		return
	}

	task, warning, err := h.taskService.DeleteConfirmation(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskDeleteConfirmationResponse{
		Task:    taskToResponse(task),
		Warning: warning,
	})
}

// pathTaskID extracts the numeric task ID from the URL path, writing a 400
// response and returning false when it is missing or malformed.
func (h *TaskHandler) pathTaskID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (int64, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		log.Warn("task ID not found in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Task ID is required")
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		log.Warn("invalid task ID format", slog.String("task_id", raw))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID format")
		return 0, false
	}

	return id, true
}

// respondValidationFailure writes a 422 for payload validation errors,
// including field-level detail when available.
func (h *TaskHandler) respondValidationFailure(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	log.Debug("request validation failed", slog.String("error", err.Error()))

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		RespondWithValidationError(w, r, http.StatusUnprocessableEntity, verr)
		return
	}

	shared.RespondWithErrorAndLog(w, r, http.StatusUnprocessableEntity, "Validation failed", err)
}

// respondServiceError maps a service error to its status code and safe
// message, logging the full (redacted) error.
func (h *TaskHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := MapErrorToStatusCode(err)
	safeMessage := GetSafeErrorMessage(err)
	shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
}

// parseListQuery parses and bounds-checks the list query parameters,
// returning the filter conjunction and page window. Every malformed or
// out-of-range parameter is a client error; nothing is silently clamped or
// ignored.
func parseListQuery(r *http.Request) (store.TaskFilter, store.Page, error) {
	var filter store.TaskFilter
	page := store.Page{Number: defaultPage, Size: defaultSize}
	q := r.URL.Query()

	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return filter, page, errors.New("page must be an integer greater than or equal to 1")
		}
		page.Number = n
	}

	if raw := q.Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSize {
			return filter, page, fmt.Errorf("size must be an integer between 1 and %d", maxSize)
		}
		page.Size = n
	}

	if raw := q.Get("status"); raw != "" {
		status := domain.TaskStatus(raw)
		if !status.IsValid() {
			return filter, page, errors.New("Invalid status. Must be one of: pending, in_progress, completed")
		}
		filter.Status = &status
	}

	filter.Assignee = q.Get("assignee")

	if raw := q.Get("deadline_from"); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			return filter, page, errors.New("Invalid deadline_from format. Use YYYY-MM-DD")
		}
		filter.DeadlineFrom = &d
	}

	if raw := q.Get("deadline_to"); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			return filter, page, errors.New("Invalid deadline_to format. Use YYYY-MM-DD")
		}
		filter.DeadlineTo = &d
	}

	if filter.DeadlineFrom != nil && filter.DeadlineTo != nil &&
		filter.DeadlineFrom.After(*filter.DeadlineTo) {
		return filter, page, errors.New("deadline_from must be earlier than or equal to deadline_to")
	}

	if raw := q.Get("overdue_only"); raw != "" {
		overdue, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, page, errors.New("overdue_only must be a boolean")
		}
		filter.OverdueOnly = overdue
	}

	filter.Today = domain.Today()

	return filter, page, nil
}
