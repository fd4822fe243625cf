package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskfolio/taskfolio-api/internal/domain"
	"github.com/taskfolio/taskfolio-api/internal/store"
)

func TestBuildTaskFilterEmpty(t *testing.T) {
	t.Parallel()

	where, args := buildTaskFilter(store.TaskFilter{})

	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildTaskFilterSinglePredicates(t *testing.T) {
	t.Parallel()

	status := domain.TaskStatusPending
	from := domain.NewDate(2026, time.January, 1)
	to := domain.NewDate(2026, time.December, 31)
	today := domain.NewDate(2026, time.September, 1)

	tests := []struct {
		name      string
		filter    store.TaskFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "status",
			filter:    store.TaskFilter{Status: &status},
			wantWhere: "WHERE status = $1",
			wantArgs:  []any{status},
		},
		{
			name:      "assignee substring match",
			filter:    store.TaskFilter{Assignee: "sam"},
			wantWhere: "WHERE assignee ILIKE $1",
			wantArgs:  []any{"%sam%"},
		},
		{
			name:      "deadline from",
			filter:    store.TaskFilter{DeadlineFrom: &from},
			wantWhere: "WHERE deadline >= $1",
			wantArgs:  []any{from.Time()},
		},
		{
			name:      "deadline to",
			filter:    store.TaskFilter{DeadlineTo: &to},
			wantWhere: "WHERE deadline <= $1",
			wantArgs:  []any{to.Time()},
		},
		{
			name:      "overdue only",
			filter:    store.TaskFilter{OverdueOnly: true, Today: today},
			wantWhere: "WHERE (deadline < $1 AND status <> 'completed')",
			wantArgs:  []any{today.Time()},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			where, args := buildTaskFilter(tc.filter)

			assert.Equal(t, tc.wantWhere, where)
			assert.Equal(t, tc.wantArgs, args)
		})
	}
}

func TestBuildTaskFilterConjunction(t *testing.T) {
	t.Parallel()

	status := domain.TaskStatusInProgress
	from := domain.NewDate(2026, time.January, 1)
	to := domain.NewDate(2026, time.June, 30)
	today := domain.NewDate(2026, time.September, 1)

	where, args := buildTaskFilter(store.TaskFilter{
		Status:       &status,
		Assignee:     "lee",
		DeadlineFrom: &from,
		DeadlineTo:   &to,
		OverdueOnly:  true,
		Today:        today,
	})

	assert.Equal(t,
		"WHERE status = $1 AND assignee ILIKE $2 AND deadline >= $3 AND deadline <= $4 AND (deadline < $5 AND status <> 'completed')",
		where)
	require.Len(t, args, 5)
	assert.Equal(t, status, args[0])
	assert.Equal(t, "%lee%", args[1])
	assert.Equal(t, from.Time(), args[2])
	assert.Equal(t, to.Time(), args[3])
	assert.Equal(t, today.Time(), args[4])
}

func TestBuildTaskFilterPlaceholderNumbering(t *testing.T) {
	t.Parallel()

	// A filter that skips status must still number placeholders
	// consecutively so appended LIMIT/OFFSET stay aligned with args.
	to := domain.NewDate(2026, time.June, 30)
	where, args := buildTaskFilter(store.TaskFilter{
		Assignee:   "kim",
		DeadlineTo: &to,
	})

	assert.Equal(t, "WHERE assignee ILIKE $1 AND deadline <= $2", where)
	assert.Len(t, args, 2)
}

func TestDeadlineValue(t *testing.T) {
	t.Parallel()

	assert.Nil(t, deadlineValue(nil))

	d := domain.NewDate(2026, time.April, 1)
	assert.Equal(t, d.Time(), deadlineValue(&d))
}

func TestNewPostgresTaskStorePanicsOnNilDB(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		NewPostgresTaskStore(nil, nil)
	})
}

func TestPageOffset(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, store.Page{Number: 1, Size: 20}.Offset())
	assert.Equal(t, 20, store.Page{Number: 2, Size: 20}.Offset())
	assert.Equal(t, 10, store.Page{Number: 3, Size: 5}.Offset())
}
