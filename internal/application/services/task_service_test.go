package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackbench/core/internal/domain/entities"
	"github.com/trackbench/core/internal/infrastructure/logger"
	"github.com/trackbench/core/internal/ports"
)

type fakeTaskRepo struct {
	lastFilter   ports.TaskFilter
	queryCalled  bool
	tasks        []*entities.Task
	queryErr     error
	created      []*entities.Task
	deleteResult bool
	deleteErr    error
}

func (f *fakeTaskRepo) Create(ctx context.Context, task *entities.Task) error {
	f.created = append(f.created, task)
	return nil
}

func (f *fakeTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	for _, t := range f.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, entities.ErrTaskNotFound
}

func (f *fakeTaskRepo) Query(ctx context.Context, filter ports.TaskFilter) ([]*entities.Task, error) {
	f.queryCalled = true
	f.lastFilter = filter
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.tasks, nil
}

func (f *fakeTaskRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return f.deleteResult, f.deleteErr
}

func newTestTaskService(repo *fakeTaskRepo) *TaskService {
	return NewTaskService(repo, nil, logger.NewNop())
}

func TestListTasksFiltersByUsernameVariants(t *testing.T) {
	repo := &fakeTaskRepo{}
	svc := newTestTaskService(repo)

	_, err := svc.ListTasks(context.Background(), "juan", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"juan", "Juan", "JUAN"}, repo.lastFilter.Creators)
	assert.True(t, repo.lastFilter.IncludeUnattributed, "legacy rows without a creator must stay visible")
	assert.Nil(t, repo.lastFilter.Period)
}

func TestListTasksUppercasesWholeUsername(t *testing.T) {
	repo := &fakeTaskRepo{}
	svc := newTestTaskService(repo)

	_, err := svc.ListTasks(context.Background(), "McCoy", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"mccoy", "Mccoy", "MCCOY"}, repo.lastFilter.Creators)
}

func TestListTasksRejectsEmptyIdentity(t *testing.T) {
	repo := &fakeTaskRepo{}
	svc := newTestTaskService(repo)

	_, err := svc.ListTasks(context.Background(), "", nil)
	assert.ErrorIs(t, err, entities.ErrUnauthorized)
	assert.False(t, repo.queryCalled)
}

func TestListTasksPassesPeriodThrough(t *testing.T) {
	repo := &fakeTaskRepo{}
	svc := newTestTaskService(repo)

	period := &ports.Period{Month: 12, Year: 2025}
	_, err := svc.ListTasks(context.Background(), "juan", period)
	require.NoError(t, err)
	require.NotNil(t, repo.lastFilter.Period)
	assert.Equal(t, 12, repo.lastFilter.Period.Month)
}

func TestListTasksRejectsInvalidPeriod(t *testing.T) {
	repo := &fakeTaskRepo{}
	svc := newTestTaskService(repo)

	_, err := svc.ListTasks(context.Background(), "juan", &ports.Period{Month: 13, Year: 2025})
	assert.Error(t, err)
	assert.False(t, repo.queryCalled)
}

func TestListTasksEmptyResultIsSuccess(t *testing.T) {
	repo := &fakeTaskRepo{tasks: []*entities.Task{}}
	svc := newTestTaskService(repo)

	tasks, err := svc.ListTasks(context.Background(), "juan", nil)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCreateTaskValidation(t *testing.T) {
	fixed := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		req     ports.CreateTaskRequest
		wantErr error
	}{
		{
			name:    "blank title",
			req:     ports.CreateTaskRequest{Title: "   ", DueDate: "2026-09-01"},
			wantErr: entities.ErrTitleRequired,
		},
		{
			name:    "missing due date",
			req:     ports.CreateTaskRequest{Title: "Review"},
			wantErr: entities.ErrDueDateRequired,
		},
		{
			name:    "due date yesterday",
			req:     ports.CreateTaskRequest{Title: "Review", DueDate: "2026-08-29"},
			wantErr: entities.ErrDueDateInPast,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeTaskRepo{}
			svc := newTestTaskService(repo)
			svc.now = func() time.Time { return fixed }

			_, err := svc.CreateTask(context.Background(), "juan", tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, repo.created)
		})
	}
}

func TestCreateTaskDueTodayIsAccepted(t *testing.T) {
	fixed := time.Date(2026, 8, 30, 23, 30, 0, 0, time.UTC)
	repo := &fakeTaskRepo{}
	svc := newTestTaskService(repo)
	svc.now = func() time.Time { return fixed }

	task, err := svc.CreateTask(context.Background(), "juan", ports.CreateTaskRequest{
		Title:   "Review",
		DueDate: "2026-08-30",
	})
	require.NoError(t, err)
	require.NotNil(t, task.CreatedBy)
	assert.Equal(t, "juan", *task.CreatedBy)
	assert.Equal(t, entities.TaskStatusPending, task.Status)
	assert.Len(t, repo.created, 1)
}

func TestCreateTaskKeepsCreatorCasing(t *testing.T) {
	repo := &fakeTaskRepo{}
	svc := newTestTaskService(repo)
	svc.now = func() time.Time { return time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC) }

	task, err := svc.CreateTask(context.Background(), "Juan", ports.CreateTaskRequest{
		Title:   "Review",
		DueDate: "2026-09-15",
	})
	require.NoError(t, err)
	assert.Equal(t, "Juan", *task.CreatedBy)
}

func TestDeleteTaskReportsWhetherRecordExisted(t *testing.T) {
	repo := &fakeTaskRepo{deleteResult: true}
	svc := newTestTaskService(repo)

	removed, err := svc.DeleteTask(context.Background(), "juan", uuid.New())
	require.NoError(t, err)
	assert.True(t, removed)

	repo.deleteResult = false
	removed, err = svc.DeleteTask(context.Background(), "juan", uuid.New())
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestDeleteTaskWrapsRepositoryError(t *testing.T) {
	repo := &fakeTaskRepo{deleteErr: errors.New("connection refused")}
	svc := newTestTaskService(repo)

	_, err := svc.DeleteTask(context.Background(), "juan", uuid.New())
	assert.Error(t, err)
}
