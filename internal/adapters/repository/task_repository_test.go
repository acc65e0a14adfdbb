package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackbench/core/internal/domain/entities"
	"github.com/trackbench/core/internal/ports"
)

func newMockTaskRepo(t *testing.T) (ports.TaskRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTaskRepository(sqlx.NewDb(db, "postgres")), mock
}

var taskColumns = []string{"id", "title", "description", "due_date", "created_by", "status", "completed_at", "created_at"}

func TestQueryPeriodMatchesCreationOrDueDate(t *testing.T) {
	repo, mock := newMockTaskRepo(t)

	period := &ports.Period{Month: 5, Year: 2026}
	start, end := period.Range()

	// One row created inside the month, one created earlier but due inside
	// it. Both satisfy the date predicate sent to the database.
	createdInMonth := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	createdEarlier := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	dueInMonth := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(taskColumns).
		AddRow(uuid.NewString(), "created this month", nil, createdInMonth.AddDate(0, 1, 0), "juan", "pending", nil, createdInMonth).
		AddRow(uuid.NewString(), "due this month", nil, dueInMonth, "Juan", "pending", nil, createdEarlier)

	mock.ExpectQuery(`WHERE \(created_by IN \(\$1, \$2, \$3\) OR created_by IS NULL\) AND \(\(created_at >= \$4 AND created_at < \$5\) OR \(due_date >= \$6 AND due_date < \$7\)\)\s+ORDER BY created_at DESC`).
		WithArgs("juan", "Juan", "JUAN", start, end, start, end).
		WillReturnRows(rows)

	tasks, err := repo.Query(context.Background(), ports.TaskFilter{
		Creators:            entities.UsernameVariants("juan"),
		IncludeUnattributed: true,
		Period:              period,
	})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "created this month", tasks[0].Title)
	assert.Equal(t, "due this month", tasks[1].Title)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryPeriodDecemberRollsIntoNextYear(t *testing.T) {
	repo, mock := newMockTaskRepo(t)

	period := &ports.Period{Month: 12, Year: 2025}
	start := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`\(\(created_at >= \$4 AND created_at < \$5\) OR \(due_date >= \$6 AND due_date < \$7\)\)`).
		WithArgs("juan", "Juan", "JUAN", start, end, start, end).
		WillReturnRows(sqlmock.NewRows(taskColumns))

	tasks, err := repo.Query(context.Background(), ports.TaskFilter{
		Creators:            entities.UsernameVariants("juan"),
		IncludeUnattributed: true,
		Period:              period,
	})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryWithoutPeriodOmitsDateClause(t *testing.T) {
	repo, mock := newMockTaskRepo(t)

	// The creator clause runs straight into ORDER BY: no date predicate.
	mock.ExpectQuery(`WHERE \(created_by IN \(\$1, \$2, \$3\) OR created_by IS NULL\)\s+ORDER BY created_at DESC`).
		WithArgs("juan", "Juan", "JUAN").
		WillReturnRows(sqlmock.NewRows(taskColumns))

	_, err := repo.Query(context.Background(), ports.TaskFilter{
		Creators:            entities.UsernameVariants("juan"),
		IncludeUnattributed: true,
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryCreatorsOnlyDropsNullArm(t *testing.T) {
	repo, mock := newMockTaskRepo(t)

	mock.ExpectQuery(`WHERE created_by IN \(\$1, \$2, \$3\)\s+ORDER BY created_at DESC`).
		WithArgs("juan", "Juan", "JUAN").
		WillReturnRows(sqlmock.NewRows(taskColumns))

	_, err := repo.Query(context.Background(), ports.TaskFilter{
		Creators: entities.UsernameVariants("juan"),
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryUnattributedOnly(t *testing.T) {
	repo, mock := newMockTaskRepo(t)

	mock.ExpectQuery(`WHERE created_by IS NULL\s+ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(taskColumns))

	_, err := repo.Query(context.Background(), ports.TaskFilter{
		IncludeUnattributed: true,
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryEmptyFilterShortCircuits(t *testing.T) {
	repo, mock := newMockTaskRepo(t)

	tasks, err := repo.Query(context.Background(), ports.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	// No query must reach the database.
	assert.NoError(t, mock.ExpectationsWereMet())
}
