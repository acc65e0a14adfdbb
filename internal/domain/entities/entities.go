package entities

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrUserNotFound           = errors.New("user not found")
	ErrUserAlreadyExists      = errors.New("user already exists")
	ErrTaskNotFound           = errors.New("task not found")
	ErrTitleRequired          = errors.New("title is required")
	ErrTitleTooShort          = errors.New("title is too short")
	ErrDueDateRequired        = errors.New("due date is required")
	ErrDueDateInPast          = errors.New("due date cannot be before today")
	ErrInvalidPhase           = errors.New("invalid ISO phase")
	ErrInvalidEmail           = errors.New("invalid email address")
	ErrEmailAlreadySubscribed = errors.New("email already subscribed")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrStoreUnavailable       = errors.New("store unavailable")
)

// Enums and types
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type TaskStatus string

const (
	TaskStatusPending TaskStatus = "pending"
	TaskStatusDone    TaskStatus = "done"
)

type AuditLevel string

const (
	AuditLevelInfo    AuditLevel = "info"
	AuditLevelSuccess AuditLevel = "success"
	AuditLevelWarning AuditLevel = "warning"
	AuditLevelError   AuditLevel = "error"
)

// ISOPhase is one of the five fixed phase codes of the local checklist.
type ISOPhase string

const (
	ISOPhasePlanning       ISOPhase = "01"
	ISOPhaseImplementation ISOPhase = "02"
	ISOPhaseVerification   ISOPhase = "03"
	ISOPhaseAudit          ISOPhase = "04"
	ISOPhaseImprovement    ISOPhase = "05"
)

// User represents an account record. Usernames are stored in canonical
// lowercase form and looked up case-insensitively.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash *string   `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Task represents a server-scoped task record.
//
// CreatedBy is stored exactly as captured at write time. Historical records
// carry it in mixed case or not at all, so reads must match the case variants
// produced by UsernameVariants and treat a NULL creator as visible to everyone.
type Task struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description" db:"description"`
	DueDate     time.Time  `json:"due_date" db:"due_date"`
	CreatedBy   *string    `json:"created_by" db:"created_by"`
	Status      TaskStatus `json:"status" db:"status"`
	CompletedAt *time.Time `json:"completed_at" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// LocalTask is an entry of the client-local ISO checklist. It lives entirely
// outside the server task store and is never synchronized to it.
type LocalTask struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Phase       ISOPhase   `json:"phase"`
	DueDate     string     `json:"due"`
	Origin      string     `json:"origin"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AuditEntry is one record of the local append-only event log.
type AuditEntry struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"ts"`
	Level     AuditLevel             `json:"level"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details"`
	Meta      map[string]interface{} `json:"meta"`
}

// EmailSubscription stores a mailing-list address. Addresses are case-folded
// and trimmed before storage; uniqueness is enforced by the store.
type EmailSubscription struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	SubscribedAt time.Time `json:"subscribed_at" db:"subscribed_at"`
}

// TaskSource distinguishes the two populations of a consolidated view.
type TaskSource string

const (
	TaskSourceServer TaskSource = "general"
	TaskSourceLocal  TaskSource = "iso"
)

// UsernameVariants returns the bounded set of creator spellings a query must
// match: lowercase, capitalized and fully uppercase. Historical task records
// were written with whichever spelling the session happened to carry, so all
// three are queried. The set is deliberately closed; it is not a general
// fuzzy match.
func UsernameVariants(username string) []string {
	lower := strings.ToLower(username)
	return []string{lower, capitalize(lower), strings.ToUpper(username)}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Utility methods
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleUser, UserRoleAdmin:
		return true
	default:
		return false
	}
}

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusDone:
		return true
	default:
		return false
	}
}

func (l AuditLevel) IsValid() bool {
	switch l {
	case AuditLevelInfo, AuditLevelSuccess, AuditLevelWarning, AuditLevelError:
		return true
	default:
		return false
	}
}

func (p ISOPhase) IsValid() bool {
	switch p {
	case ISOPhasePlanning, ISOPhaseImplementation, ISOPhaseVerification, ISOPhaseAudit, ISOPhaseImprovement:
		return true
	default:
		return false
	}
}

// IsDone reports whether the task has been completed.
func (t *Task) IsDone() bool {
	return t.Status == TaskStatusDone
}

// Complete marks the task done and stamps the completion time.
func (t *Task) Complete() {
	if t.Status == TaskStatusDone {
		return
	}
	t.Status = TaskStatusDone
	now := time.Now()
	t.CompletedAt = &now
}

// IsOverdue reports whether the due date has passed without completion.
func (t *Task) IsOverdue() bool {
	return time.Now().After(t.DueDate) && t.Status != TaskStatusDone
}
