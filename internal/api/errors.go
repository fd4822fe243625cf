package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/taskfolio/taskfolio-api/internal/api/shared"
	"github.com/taskfolio/taskfolio-api/internal/domain"
	"github.com/taskfolio/taskfolio-api/internal/service"
	"github.com/taskfolio/taskfolio-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Empty update payloads are a plain client error, not a field-level one
	case errors.Is(err, service.ErrNoFieldsToUpdate):
		return http.StatusBadRequest

	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Field-level validation errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusUnprocessableEntity

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrNoFieldsToUpdate):
		return "No fields to update"

	case store.IsNotFoundError(err):
		return "Task not found"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Validation failed"

	default:
		return "An unexpected error occurred"
	}
}

// ValidationErrorResponse is the error body for requests rejected with
// field-level detail.
type ValidationErrorResponse struct {
	Error      string                  `json:"error"`
	Violations []domain.FieldViolation `json:"violations"`
	TraceID    string                  `json:"trace_id,omitempty"`
}

// RespondWithValidationError writes a field-level validation error response.
func RespondWithValidationError(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	verr *domain.ValidationError,
) {
	shared.RespondWithJSON(w, r, status, ValidationErrorResponse{
		Error:      "Validation failed",
		Violations: verr.Violations,
		TraceID:    shared.GetTraceID(r.Context()),
	})
}

// violationsFromValidator converts validator.ValidationErrors into the
// field-violation shape the API reports. Field names come from json tags
// via the shared validator's tag-name func.
func violationsFromValidator(errs validator.ValidationErrors) []domain.FieldViolation {
	violations := make([]domain.FieldViolation, 0, len(errs))
	for _, fe := range errs {
		violations = append(violations, domain.FieldViolation{
			Field:   fe.Field(),
			Message: validationTagMessage(fe),
		})
	}
	return violations
}

// validationTagMessage maps validation tags to user-friendly error messages.
func validationTagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}
