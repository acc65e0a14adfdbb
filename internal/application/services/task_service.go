package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trackbench/core/internal/domain/entities"
	"github.com/trackbench/core/internal/infrastructure/logger"
	"github.com/trackbench/core/internal/ports"
)

// TaskService handles the server-scoped task write path and the identity
// scoped query engine.
type TaskService struct {
	taskRepo ports.TaskRepository
	audit    ports.AuditLog
	logger   *logger.Logger
	now      func() time.Time
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo ports.TaskRepository, audit ports.AuditLog, logger *logger.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		audit:    audit,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateTask validates and persists a new task attributed to the session
// identity. The creator string is stored exactly as received; reads
// compensate for historical case variation, see ListTasks.
func (s *TaskService) CreateTask(ctx context.Context, identity string, req ports.CreateTaskRequest) (*entities.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, entities.ErrTitleRequired
	}
	if req.DueDate == "" {
		return nil, entities.ErrDueDateRequired
	}

	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrDueDateRequired, err)
	}

	// Compare calendar days in UTC so a date-only due date is not shifted
	// by the server's zone.
	today := truncateToDay(s.now().UTC())
	if truncateToDay(dueDate.UTC()).Before(today) {
		return nil, entities.ErrDueDateInPast
	}

	task := &entities.Task{
		ID:        uuid.New(),
		Title:     title,
		DueDate:   dueDate,
		CreatedBy: &identity,
		Status:    entities.TaskStatusPending,
	}
	if req.Description != "" {
		desc := req.Description
		task.Description = &desc
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Infow("Task created", "task_id", task.ID, "title", task.Title, "created_by", identity)
	s.recordAudit(ctx, entities.AuditLevelSuccess, "Task sent to server", map[string]interface{}{
		"title": task.Title, "server_id": task.ID.String(),
	})

	return task, nil
}

// ListTasks returns the tasks visible to the given identity, optionally
// restricted to a month/year period, ordered by creation time descending.
//
// The identity filter matches the lowercase, capitalized and uppercase
// spellings of the username plus records with no creator attribution at all
// (legacy rows are universally visible). When a period is given, a record
// matches if it was created in the period OR is due in it; the period filter
// is ANDed with the identity filter. An empty result is a valid success.
func (s *TaskService) ListTasks(ctx context.Context, identity string, period *ports.Period) ([]*entities.Task, error) {
	if identity == "" {
		// The session gate should have rejected the request already.
		return nil, entities.ErrUnauthorized
	}
	if period != nil && !period.IsValid() {
		return nil, fmt.Errorf("invalid period %d/%d", period.Month, period.Year)
	}

	filter := ports.TaskFilter{
		Creators:            entities.UsernameVariants(identity),
		IncludeUnattributed: true,
		Period:              period,
	}

	tasks, err := s.taskRepo.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks for %q: %w", identity, err)
	}

	return tasks, nil
}

// DeleteTask removes a task by identifier and reports whether a record was
// actually removed. Ownership of the record is not checked; the unchecked
// delete is logged as a security event so it stays visible in operation.
func (s *TaskService) DeleteTask(ctx context.Context, identity string, id uuid.UUID) (bool, error) {
	removed, err := s.taskRepo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}

	if removed {
		s.logger.LogSecurityEvent("task_deleted_without_ownership_check", identity, "", map[string]interface{}{
			"task_id": id.String(),
		})
		s.recordAudit(ctx, entities.AuditLevelInfo, "Task deleted", map[string]interface{}{
			"task_id": id.String(), "user": identity,
		})
	}

	return removed, nil
}

func (s *TaskService) recordAudit(ctx context.Context, level entities.AuditLevel, message string, details map[string]interface{}) {
	if s.audit == nil {
		return
	}
	if _, err := s.audit.Append(ctx, entities.AuditEntry{
		Level:   level,
		Message: message,
		Details: details,
	}); err != nil {
		s.logger.Warnw("Failed to record audit entry", "error", err)
	}
}

// parseDate accepts a calendar date or a full timestamp.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
