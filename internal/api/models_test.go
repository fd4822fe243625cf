package api

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskfolio/taskfolio-api/internal/domain"
)

func violationFields(t *testing.T, err error) []string {
	t.Helper()

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	fields := make([]string, 0, len(verr.Violations))
	for _, v := range verr.Violations {
		fields = append(fields, v.Field)
	}
	return fields
}

func TestCreateTaskRequestValidate(t *testing.T) {
	today := domain.NewDate(2026, time.September, 1)

	t.Run("minimal valid request", func(t *testing.T) {
		req := CreateTaskRequest{Title: "  Write docs  "}

		params, err := req.Validate(today)

		require.NoError(t, err)
		assert.Equal(t, "Write docs", params.Title)
		assert.Equal(t, domain.TaskStatusPending, params.Status)
		assert.Nil(t, params.Description)
		assert.Nil(t, params.Deadline)
		assert.Nil(t, params.Assignee)
	})

	t.Run("explicit status kept", func(t *testing.T) {
		status := "in_progress"
		req := CreateTaskRequest{Title: "t", Status: &status}

		params, err := req.Validate(today)

		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusInProgress, params.Status)
	})

	t.Run("deadline today accepted", func(t *testing.T) {
		d := today
		req := CreateTaskRequest{Title: "t", Deadline: &d}

		_, err := req.Validate(today)

		require.NoError(t, err)
	})

	t.Run("missing title", func(t *testing.T) {
		req := CreateTaskRequest{}

		_, err := req.Validate(today)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Contains(t, violationFields(t, err), "title")
	})

	t.Run("blank title", func(t *testing.T) {
		req := CreateTaskRequest{Title: "   "}

		_, err := req.Validate(today)

		require.Error(t, err)
		assert.Contains(t, violationFields(t, err), "title")
	})

	t.Run("title too long", func(t *testing.T) {
		req := CreateTaskRequest{Title: strings.Repeat("a", domain.TaskTitleMaxLen+1)}

		_, err := req.Validate(today)

		require.Error(t, err)
		assert.Contains(t, violationFields(t, err), "title")
	})

	t.Run("multibyte title at character limit accepted", func(t *testing.T) {
		req := CreateTaskRequest{Title: strings.Repeat("あ", domain.TaskTitleMaxLen)}

		params, err := req.Validate(today)

		require.NoError(t, err)
		assert.Equal(t, req.Title, params.Title)
	})

	t.Run("multibyte title over character limit rejected", func(t *testing.T) {
		req := CreateTaskRequest{Title: strings.Repeat("あ", domain.TaskTitleMaxLen+1)}

		_, err := req.Validate(today)

		require.Error(t, err)
		assert.Contains(t, violationFields(t, err), "title")
	})

	t.Run("invalid status", func(t *testing.T) {
		status := "done"
		req := CreateTaskRequest{Title: "t", Status: &status}

		_, err := req.Validate(today)

		require.Error(t, err)
		assert.Contains(t, violationFields(t, err), "status")
	})

	t.Run("past deadline rejected", func(t *testing.T) {
		d := today.AddDays(-1)
		req := CreateTaskRequest{Title: "t", Deadline: &d}

		_, err := req.Validate(today)

		require.Error(t, err)
		assert.Contains(t, violationFields(t, err), "deadline")
	})

	t.Run("multiple violations collected", func(t *testing.T) {
		status := "done"
		d := today.AddDays(-1)
		req := CreateTaskRequest{Status: &status, Deadline: &d}

		_, err := req.Validate(today)

		require.Error(t, err)
		fields := violationFields(t, err)
		assert.Contains(t, fields, "title")
		assert.Contains(t, fields, "status")
		assert.Contains(t, fields, "deadline")
	})
}

func TestUpdateTaskRequestUnmarshalPresence(t *testing.T) {
	t.Run("absent fields are not present", func(t *testing.T) {
		var req UpdateTaskRequest
		require.NoError(t, json.Unmarshal([]byte(`{"title": "new"}`), &req))

		assert.True(t, req.HasUpdates())
		assert.True(t, req.present["title"])
		assert.False(t, req.present["description"])
		require.NotNil(t, req.Title)
		assert.Equal(t, "new", *req.Title)
	})

	t.Run("explicit null is present with nil value", func(t *testing.T) {
		var req UpdateTaskRequest
		require.NoError(t, json.Unmarshal([]byte(`{"deadline": null}`), &req))

		assert.True(t, req.present["deadline"])
		assert.Nil(t, req.Deadline)
	})

	t.Run("empty object has no updates", func(t *testing.T) {
		var req UpdateTaskRequest
		require.NoError(t, json.Unmarshal([]byte(`{}`), &req))

		assert.False(t, req.HasUpdates())
	})

	t.Run("unrecognized fields ignored", func(t *testing.T) {
		var req UpdateTaskRequest
		require.NoError(t, json.Unmarshal([]byte(`{"priority": "high"}`), &req))

		assert.False(t, req.HasUpdates())
	})

	t.Run("type mismatch names the field", func(t *testing.T) {
		var req UpdateTaskRequest
		err := json.Unmarshal([]byte(`{"title": 42}`), &req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "title")
	})

	t.Run("malformed deadline fails", func(t *testing.T) {
		var req UpdateTaskRequest
		err := json.Unmarshal([]byte(`{"deadline": "soon"}`), &req)

		require.Error(t, err)
	})
}

func TestUpdateTaskRequestValidate(t *testing.T) {
	decode := func(t *testing.T, body string) UpdateTaskRequest {
		t.Helper()
		var req UpdateTaskRequest
		require.NoError(t, json.Unmarshal([]byte(body), &req))
		return req
	}

	t.Run("title and status values", func(t *testing.T) {
		req := decode(t, `{"title": "  renamed  ", "status": "completed"}`)

		params, err := req.Validate()

		require.NoError(t, err)
		require.NotNil(t, params.Title)
		assert.Equal(t, "renamed", *params.Title)
		require.NotNil(t, params.Status)
		assert.Equal(t, domain.TaskStatusCompleted, *params.Status)
		assert.False(t, params.DescriptionSet)
	})

	t.Run("explicit null clears nullable fields", func(t *testing.T) {
		req := decode(t, `{"description": null, "deadline": null, "assignee": null}`)

		params, err := req.Validate()

		require.NoError(t, err)
		assert.True(t, params.DescriptionSet)
		assert.Nil(t, params.Description)
		assert.True(t, params.DeadlineSet)
		assert.Nil(t, params.Deadline)
		assert.True(t, params.AssigneeSet)
		assert.Nil(t, params.Assignee)
	})

	t.Run("null title rejected", func(t *testing.T) {
		req := decode(t, `{"title": null}`)

		_, err := req.Validate()

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Contains(t, violationFields(t, err), "title")
	})

	t.Run("null status rejected", func(t *testing.T) {
		req := decode(t, `{"status": null}`)

		_, err := req.Validate()

		require.Error(t, err)
		assert.Contains(t, violationFields(t, err), "status")
	})

	t.Run("blank title rejected", func(t *testing.T) {
		req := decode(t, `{"title": "   "}`)

		_, err := req.Validate()

		require.Error(t, err)
		assert.Contains(t, violationFields(t, err), "title")
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		req := decode(t, `{"status": "archived"}`)

		_, err := req.Validate()

		require.Error(t, err)
		assert.Contains(t, violationFields(t, err), "status")
	})

	t.Run("multibyte fields measured in characters", func(t *testing.T) {
		body, err := json.Marshal(map[string]string{
			"title":    strings.Repeat("あ", domain.TaskTitleMaxLen),
			"assignee": strings.Repeat("あ", domain.TaskAssigneeMaxLen),
		})
		require.NoError(t, err)
		req := decode(t, string(body))

		params, verr := req.Validate()

		require.NoError(t, verr)
		require.NotNil(t, params.Title)
		require.NotNil(t, params.Assignee)

		over := decode(t, `{"title": "`+strings.Repeat("あ", domain.TaskTitleMaxLen+1)+`"}`)
		_, verr = over.Validate()

		require.Error(t, verr)
		assert.Contains(t, violationFields(t, verr), "title")
	})

	t.Run("past deadline allowed on update", func(t *testing.T) {
		req := decode(t, `{"deadline": "2020-01-01"}`)

		params, err := req.Validate()

		require.NoError(t, err)
		assert.True(t, params.DeadlineSet)
		require.NotNil(t, params.Deadline)
	})

	t.Run("overlong fields rejected", func(t *testing.T) {
		body, err := json.Marshal(map[string]string{
			"description": strings.Repeat("d", domain.TaskDescriptionMaxLen+1),
			"assignee":    strings.Repeat("a", domain.TaskAssigneeMaxLen+1),
		})
		require.NoError(t, err)
		req := decode(t, string(body))

		_, verr := req.Validate()

		require.Error(t, verr)
		fields := violationFields(t, verr)
		assert.Contains(t, fields, "description")
		assert.Contains(t, fields, "assignee")
	})
}

func TestTasksToResponsesNeverNil(t *testing.T) {
	responses := tasksToResponses(nil)

	require.NotNil(t, responses)
	assert.Empty(t, responses)

	data, err := json.Marshal(responses)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestValidationErrorUnwrapsToSentinel(t *testing.T) {
	err := domain.NewValidationError(domain.FieldViolation{Field: "title", Message: "is required"})

	assert.True(t, errors.Is(err, domain.ErrValidation))
}
