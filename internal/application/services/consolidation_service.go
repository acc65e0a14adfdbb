package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/trackbench/core/internal/domain/entities"
	"github.com/trackbench/core/internal/infrastructure/logger"
	"github.com/trackbench/core/internal/ports"
)

// serverPhasePlaceholder marks consolidated server tasks, which carry no ISO
// phase. The two populations are never phase-unified.
const serverPhasePlaceholder = "N/A"

// ConsolidationService merges the server task population with the local ISO
// checklist into one unified, timestamp-ordered view, and produces the
// month/year report projection.
type ConsolidationService struct {
	tasks  *TaskService
	local  ports.LocalTaskStore
	audit  ports.AuditLog
	logger *logger.Logger
	now    func() time.Time
}

// NewConsolidationService creates a new consolidation service
func NewConsolidationService(tasks *TaskService, local ports.LocalTaskStore, audit ports.AuditLog, logger *logger.Logger) *ConsolidationService {
	return &ConsolidationService{
		tasks:  tasks,
		local:  local,
		audit:  audit,
		logger: logger,
		now:    time.Now,
	}
}

// Consolidate returns the merged server+local task view for an identity,
// sorted by timestamp descending. The merge is read-only and idempotent.
//
// When the server population is unreachable the local half is returned
// alone: losing the server view is preferable to losing everything. An
// unauthorized signal is not degraded; the caller has to re-authenticate.
func (s *ConsolidationService) Consolidate(ctx context.Context, identity string) ([]ports.ConsolidatedTask, error) {
	localTasks, err := s.local.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("read local tasks: %w", err)
	}

	combined := make([]ports.ConsolidatedTask, 0, len(localTasks))
	for _, t := range localTasks {
		combined = append(combined, ports.ConsolidatedTask{
			ID:          t.ID,
			Timestamp:   t.CreatedAt,
			Title:       t.Title,
			Description: t.Description,
			DueDate:     t.DueDate,
			Status:      t.Status,
			Source:      entities.TaskSourceLocal,
			Phase:       string(t.Phase),
		})
	}

	serverTasks, err := s.tasks.ListTasks(ctx, identity, nil)
	switch {
	case err == nil:
		for _, t := range serverTasks {
			combined = append(combined, s.fromServerTask(t))
		}
	case errors.Is(err, entities.ErrUnauthorized):
		return nil, err
	case errors.Is(err, entities.ErrStoreUnavailable):
		// Documented degradation: serve the local half alone.
		s.logger.Warnw("Server tasks unavailable, serving local tasks only", "error", err, "identity", identity)
		s.recordAudit(ctx, entities.AuditLevelError, "Failed to load server tasks for consolidated view", nil)
	default:
		return nil, err
	}

	// Newest first across both populations; ties keep insertion order.
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Timestamp.After(combined[j].Timestamp)
	})

	return combined, nil
}

// ReportData returns the reduced report projection over server tasks created
// or due in the given month. Local checklist entries are excluded from
// reports. A failed query returns a nil slice and an error so the caller can
// tell "no data available" apart from "zero matching tasks".
func (s *ConsolidationService) ReportData(ctx context.Context, identity string, month, year int) ([]ports.ReportRow, error) {
	period := &ports.Period{Month: month, Year: year}
	tasks, err := s.tasks.ListTasks(ctx, identity, period)
	if err != nil {
		return nil, fmt.Errorf("report data for %d/%d: %w", month, year, err)
	}

	rows := make([]ports.ReportRow, 0, len(tasks))
	for _, t := range tasks {
		status := t.Status
		if status == "" {
			status = entities.TaskStatusPending
		}
		rows = append(rows, ports.ReportRow{
			ID:        t.ID,
			Title:     t.Title,
			Status:    status,
			DueDate:   t.DueDate,
			CreatedAt: t.CreatedAt,
		})
	}

	return rows, nil
}

// fromServerTask translates a stored task record into the unified shape.
func (s *ConsolidationService) fromServerTask(t *entities.Task) ports.ConsolidatedTask {
	ct := ports.ConsolidatedTask{
		ID:        t.ID.String(),
		Timestamp: t.CreatedAt,
		Title:     t.Title,
		Status:    t.Status,
		Source:    entities.TaskSourceServer,
		Phase:     serverPhasePlaceholder,
	}
	if t.Description != nil {
		ct.Description = *t.Description
	}
	if !t.DueDate.IsZero() {
		ct.DueDate = t.DueDate.Format("2006-01-02")
	}
	// Records written before the status field existed default to pending.
	if ct.Status == "" {
		ct.Status = entities.TaskStatusPending
	}
	// Defensive default only; a record normally always carries its
	// creation timestamp.
	if ct.Timestamp.IsZero() {
		ct.Timestamp = s.now()
	}
	return ct
}

func (s *ConsolidationService) recordAudit(ctx context.Context, level entities.AuditLevel, message string, details map[string]interface{}) {
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
