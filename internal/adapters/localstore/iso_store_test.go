package localstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackbench/core/internal/domain/entities"
)

func TestISOTaskStoreAppendAndList(t *testing.T) {
	store := NewISOTaskStore(newTestFileStore(t))
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, &entities.LocalTask{
		ID:        "a",
		Title:     "First",
		Phase:     entities.ISOPhasePlanning,
		Status:    entities.TaskStatusPending,
		CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, store.Append(ctx, &entities.LocalTask{
		ID:     "b",
		Title:  "Second",
		Phase:  entities.ISOPhaseAudit,
		Status: entities.TaskStatusPending,
	}))

	tasks, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "a", tasks[0].ID)
	assert.Equal(t, "b", tasks[1].ID)
}

func TestISOTaskStoreListEmpty(t *testing.T) {
	store := NewISOTaskStore(newTestFileStore(t))

	tasks, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestISOTaskStoreMarkDoneIsIdempotent(t *testing.T) {
	store := NewISOTaskStore(newTestFileStore(t))
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, &entities.LocalTask{
		ID:     "a",
		Title:  "Checklist item",
		Phase:  entities.ISOPhasePlanning,
		Status: entities.TaskStatusPending,
	}))

	first, err := store.MarkDone(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusDone, first.Status)

	second, err := store.MarkDone(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusDone, second.Status)
}

func TestISOTaskStoreMarkDoneMissing(t *testing.T) {
	store := NewISOTaskStore(newTestFileStore(t))

	_, err := store.MarkDone(context.Background(), "missing")
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
}

func TestISOTaskStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)
	store := NewISOTaskStore(fs)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, &entities.LocalTask{
		ID:     "a",
		Title:  "Persisted",
		Phase:  entities.ISOPhasePlanning,
		Status: entities.TaskStatusPending,
	}))

	reopened, err := NewFileStore(dir)
	require.NoError(t, err)
	tasks, err := NewISOTaskStore(reopened).List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Persisted", tasks[0].Title)
}
