package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackbench/core/internal/adapters/localstore"
	"github.com/trackbench/core/internal/domain/entities"
	"github.com/trackbench/core/internal/infrastructure/logger"
	"github.com/trackbench/core/internal/ports"
)

func newTestISOService(t *testing.T) *ISOTaskService {
	t.Helper()
	store, err := localstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return NewISOTaskService(localstore.NewISOTaskStore(store), nil, logger.NewNop())
}

func TestISOCreateRejectsShortTitle(t *testing.T) {
	svc := newTestISOService(t)

	for _, title := range []string{"", "ab", "  a  "} {
		_, err := svc.Create(context.Background(), ports.CreateLocalTaskRequest{
			Title: title,
			Phase: "01",
		})
		assert.ErrorIs(t, err, entities.ErrTitleTooShort, "title %q", title)
	}
}

func TestISOCreateRejectsUnknownPhase(t *testing.T) {
	svc := newTestISOService(t)

	for _, phase := range []string{"", "00", "06", "1", "planning"} {
		_, err := svc.Create(context.Background(), ports.CreateLocalTaskRequest{
			Title: "Internal audit prep",
			Phase: phase,
		})
		assert.ErrorIs(t, err, entities.ErrInvalidPhase, "phase %q", phase)
	}
}

func TestISOCreateEscapesMarkup(t *testing.T) {
	svc := newTestISOService(t)

	task, err := svc.Create(context.Background(), ports.CreateLocalTaskRequest{
		Title:       "<script>alert(1)</script>",
		Description: "a & b",
		Phase:       "03",
	})
	require.NoError(t, err)
	assert.NotContains(t, task.Title, "<script>")
	assert.Equal(t, "a &amp; b", task.Description)
	assert.Equal(t, entities.TaskStatusPending, task.Status)
	assert.NotEmpty(t, task.ID)
}

func TestISOMarkDoneRoundTrip(t *testing.T) {
	svc := newTestISOService(t)

	created, err := svc.Create(context.Background(), ports.CreateLocalTaskRequest{
		Title: "Document review",
		Phase: "04",
	})
	require.NoError(t, err)

	done, err := svc.MarkDone(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusDone, done.Status)

	tasks, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, entities.TaskStatusDone, tasks[0].Status)
}

func TestISOMarkDoneUnknownID(t *testing.T) {
	svc := newTestISOService(t)

	_, err := svc.MarkDone(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
}
