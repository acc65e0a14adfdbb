package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/trackbench/core/internal/domain/entities"
)

// UserRepository defines the interface for identity data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	// GetByUsername matches case-insensitively against the canonical
	// lowercase stored form.
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	List(ctx context.Context) ([]*entities.User, error)
}

// TaskRepository defines the interface for server-scoped task operations
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error)
	// Query returns tasks matching the combined creator/date filter,
	// ordered by creation timestamp descending.
	Query(ctx context.Context, filter TaskFilter) ([]*entities.Task, error)
	// Delete removes a record by identifier and reports whether a record
	// was actually removed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// SubscriptionRepository defines the interface for mailing-list addresses.
// Uniqueness of the address is enforced by the store; a duplicate insert is
// surfaced as entities.ErrEmailAlreadySubscribed.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *entities.EmailSubscription) error
	List(ctx context.Context) ([]*entities.EmailSubscription, error)
}

// LocalTaskStore defines the interface for the client-local ISO checklist.
// The store is capacity-unbounded and never synchronized to the server.
type LocalTaskStore interface {
	Append(ctx context.Context, task *entities.LocalTask) error
	List(ctx context.Context) ([]*entities.LocalTask, error)
	MarkDone(ctx context.Context, id string) (*entities.LocalTask, error)
}

// AuditLog defines the interface for the local append-only event log. The
// log is capacity-bounded; the oldest entries are evicted atomically with
// the write that overflows the cap.
type AuditLog interface {
	Append(ctx context.Context, entry entities.AuditEntry) (*entities.AuditEntry, error)
	List(ctx context.Context) ([]*entities.AuditEntry, error)
	Clear(ctx context.Context) error
}

// Period is a month/year reporting window. Its date range starts at the
// first day of the month (inclusive) and ends at the first day of the
// following month (exclusive).
type Period struct {
	Month int
	Year  int
}

// Range returns the [start, end) bounds of the period. Month 12 rolls into
// January of the next year; time.Date normalizes the overflow.
func (p Period) Range() (time.Time, time.Time) {
	start := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(p.Year, time.Month(p.Month)+1, 1, 0, 0, 0, 0, time.UTC)
	return start, end
}

// IsValid reports whether the period denotes a real month.
func (p Period) IsValid() bool {
	return p.Month >= 1 && p.Month <= 12 && p.Year > 0
}

// TaskFilter is the combined creator/date filter for task queries.
//
// A record matches when its creator is in Creators, or it carries no creator
// at all and IncludeUnattributed is set. When Period is non-nil the record
// must additionally have been created OR be due inside the period range.
type TaskFilter struct {
	Creators            []string
	IncludeUnattributed bool
	Period              *Period
}
