package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/trackbench/core/internal/domain/entities"
	"github.com/trackbench/core/internal/ports"
)

// TaskRepositoryImpl implements the TaskRepository interface
type TaskRepositoryImpl struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sqlx.DB) ports.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *entities.Task) error {
	query := `
		INSERT INTO tasks (id, title, description, due_date, created_by, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.Title, task.Description, task.DueDate, task.CreatedBy, task.Status,
	).Scan(&task.CreatedAt)

	if err != nil {
		return fmt.Errorf("create task: %w: %v", entities.ErrStoreUnavailable, err)
	}

	return nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	query := `
		SELECT id, title, description, due_date, created_by, status, completed_at, created_at
		FROM tasks
		WHERE id = $1`

	var task entities.Task
	err := r.db.GetContext(ctx, &task, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task by id: %w: %v", entities.ErrStoreUnavailable, err)
	}

	return &task, nil
}

// Query returns the tasks matching the combined creator/date filter, newest
// first. Creator matching is widened over the stored spellings plus, when
// requested, records with no creator at all (legacy rows written before
// attribution existed).
func (r *TaskRepositoryImpl) Query(ctx context.Context, filter ports.TaskFilter) ([]*entities.Task, error) {
	if len(filter.Creators) == 0 && !filter.IncludeUnattributed {
		return []*entities.Task{}, nil
	}

	var conds []string
	var args []interface{}

	switch {
	case len(filter.Creators) == 0:
		conds = append(conds, "created_by IS NULL")
	case filter.IncludeUnattributed:
		conds = append(conds, "(created_by IN (?) OR created_by IS NULL)")
		args = append(args, filter.Creators)
	default:
		conds = append(conds, "created_by IN (?)")
		args = append(args, filter.Creators)
	}

	if filter.Period != nil {
		start, end := filter.Period.Range()
		// A record belongs to the period when it was created in it OR is
		// due in it.
		conds = append(conds, "((created_at >= ? AND created_at < ?) OR (due_date >= ? AND due_date < ?))")
		args = append(args, start, end, start, end)
	}

	query := fmt.Sprintf(`
		SELECT id, title, description, due_date, created_by, status, completed_at, created_at
		FROM tasks
		WHERE %s
		ORDER BY created_at DESC`, strings.Join(conds, " AND "))

	query, inArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("build task query: %w", err)
	}
	query = r.db.Rebind(query)

	tasks := []*entities.Task{}
	err = r.db.SelectContext(ctx, &tasks, query, inArgs...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w: %v", entities.ErrStoreUnavailable, err)
	}

	return tasks, nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `DELETE FROM tasks WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w: %v", entities.ErrStoreUnavailable, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}
