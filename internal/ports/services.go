package ports

import (
	"time"

	"github.com/google/uuid"
	"github.com/trackbench/core/internal/domain/entities"
)

// LoginRequest is the credential payload of the login endpoint. The password
// field is accepted for forward compatibility; see AuthService.Login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password"`
}

// AuthResponse is returned on a successful login.
type AuthResponse struct {
	Token     string            `json:"token"`
	TokenType string            `json:"token_type"`
	ExpiresIn int64             `json:"expires_in"`
	Username  string            `json:"username"`
	Role      entities.UserRole `json:"role"`
}

// CreateTaskRequest carries the fields of a new server-scoped task.
type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	DueDate     string `json:"due_date" validate:"required"`
}

// CreateLocalTaskRequest carries the fields of a new ISO checklist entry.
type CreateLocalTaskRequest struct {
	Title       string `json:"title" validate:"required,min=3"`
	Description string `json:"description"`
	Phase       string `json:"phase" validate:"required,oneof=01 02 03 04 05"`
	DueDate     string `json:"due"`
	Origin      string `json:"origin"`
}

// SubscribeRequest carries a mailing-list address.
type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// AuditEventRequest is an externally submitted audit event.
type AuditEventRequest struct {
	Level   string                 `json:"level"`
	Message string                 `json:"message" validate:"required"`
	Details map[string]interface{} `json:"details"`
	Meta    map[string]interface{} `json:"meta"`
}

// ConsolidatedTask is the unified shape of the merged server/local task view.
// Phase is only meaningful for local entries; server entries carry "N/A".
type ConsolidatedTask struct {
	ID          string              `json:"id"`
	Timestamp   time.Time           `json:"ts"`
	Title       string              `json:"title"`
	Description string              `json:"desc"`
	DueDate     string              `json:"due"`
	Status      entities.TaskStatus `json:"status"`
	Source      entities.TaskSource `json:"source"`
	Phase       string              `json:"phase"`
}

// ReportRow is the reduced projection returned by the month/year report.
type ReportRow struct {
	ID        uuid.UUID           `json:"id"`
	Title     string              `json:"title"`
	Status    entities.TaskStatus `json:"status"`
	DueDate   time.Time           `json:"due"`
	CreatedAt time.Time           `json:"created_at"`
}
