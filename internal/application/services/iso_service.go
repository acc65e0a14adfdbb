package services

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trackbench/core/internal/domain/entities"
	"github.com/trackbench/core/internal/infrastructure/logger"
	"github.com/trackbench/core/internal/ports"
)

// ISOTaskService manages the client-local ISO checklist.
type ISOTaskService struct {
	store  ports.LocalTaskStore
	audit  ports.AuditLog
	logger *logger.Logger
}

// NewISOTaskService creates a new ISO checklist service
func NewISOTaskService(store ports.LocalTaskStore, audit ports.AuditLog, logger *logger.Logger) *ISOTaskService {
	return &ISOTaskService{
		store:  store,
		audit:  audit,
		logger: logger,
	}
}

// Create validates and appends a checklist entry. Title and description are
// HTML-escaped at write time, as the entries are rendered verbatim.
func (s *ISOTaskService) Create(ctx context.Context, req ports.CreateLocalTaskRequest) (*entities.LocalTask, error) {
	if len(strings.TrimSpace(req.Title)) < 3 {
		return nil, entities.ErrTitleTooShort
	}
	phase := entities.ISOPhase(req.Phase)
	if !phase.IsValid() {
		return nil, entities.ErrInvalidPhase
	}

	task := &entities.LocalTask{
		ID:          uuid.NewString(),
		Title:       html.EscapeString(req.Title),
		Description: html.EscapeString(req.Description),
		Phase:       phase,
		DueDate:     req.DueDate,
		Origin:      req.Origin,
		Status:      entities.TaskStatusPending,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.Append(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to store local task: %w", err)
	}

	s.recordAudit(ctx, entities.AuditLevelInfo, "ISO task created", map[string]interface{}{
		"title": task.Title, "phase": string(task.Phase),
	}, map[string]interface{}{
		"task_id": task.ID, "origin": task.Origin,
	})

	return task, nil
}

// List returns the full checklist.
func (s *ISOTaskService) List(ctx context.Context) ([]*entities.LocalTask, error) {
	return s.store.List(ctx)
}

// MarkDone completes a checklist entry.
func (s *ISOTaskService) MarkDone(ctx context.Context, id string) (*entities.LocalTask, error) {
	task, err := s.store.MarkDone(ctx, id)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, entities.AuditLevelSuccess, "ISO task marked as done", map[string]interface{}{
		"task_id": id, "title": task.Title,
	}, map[string]interface{}{
		"phase": string(task.Phase),
	})

	return task, nil
}

func (s *ISOTaskService) recordAudit(ctx context.Context, level entities.AuditLevel, message string, details, meta map[string]interface{}) {
	if s.audit == nil {
		return
	}
	if _, err := s.audit.Append(ctx, entities.AuditEntry{
		Level:   level,
		Message: message,
		Details: details,
		Meta:    meta,
	}); err != nil {
		s.logger.Warnw("Failed to record audit entry", "error", err)
	}
}
