package localstore

import (
	"context"
	"fmt"

	"github.com/trackbench/core/internal/domain/entities"
	"github.com/trackbench/core/internal/ports"
)

const isoTasksKey = "st_iso_tasks_v1"

// ISOTaskStore keeps the local ISO checklist in a single Store namespace.
// Entries are appended and marked done in place; nothing is ever deleted.
type ISOTaskStore struct {
	log *jsonLog[entities.LocalTask]
}

// NewISOTaskStore creates the local checklist store.
func NewISOTaskStore(store Store) *ISOTaskStore {
	return &ISOTaskStore{log: newJSONLog[entities.LocalTask](store, isoTasksKey)}
}

var _ ports.LocalTaskStore = (*ISOTaskStore)(nil)

// Append adds one entry to the checklist.
func (s *ISOTaskStore) Append(ctx context.Context, task *entities.LocalTask) error {
	err := s.log.update(ctx, func(tasks []entities.LocalTask) []entities.LocalTask {
		return append(tasks, *task)
	})
	if err != nil {
		return fmt.Errorf("append local task: %w", err)
	}
	return nil
}

// List returns the full checklist in insertion order.
func (s *ISOTaskStore) List(ctx context.Context) ([]*entities.LocalTask, error) {
	tasks, err := s.log.read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read local tasks: %w", err)
	}
	out := make([]*entities.LocalTask, len(tasks))
	for i := range tasks {
		out[i] = &tasks[i]
	}
	return out, nil
}

// MarkDone flips an entry to done. Marking an already-done entry again is a
// no-op that still returns the entry.
func (s *ISOTaskStore) MarkDone(ctx context.Context, id string) (*entities.LocalTask, error) {
	var found *entities.LocalTask
	err := s.log.update(ctx, func(tasks []entities.LocalTask) []entities.LocalTask {
		for i := range tasks {
			if tasks[i].ID == id {
				tasks[i].Status = entities.TaskStatusDone
				found = &tasks[i]
				break
			}
		}
		return tasks
	})
	if err != nil {
		return nil, fmt.Errorf("mark local task done: %w", err)
	}
	if found == nil {
		return nil, entities.ErrTaskNotFound
	}
	return found, nil
}
