package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/trackbench/core/internal/domain/entities"
	"github.com/trackbench/core/internal/ports"
)

const auditKey = "st_audit_v1"

// DefaultAuditMaxEntries is the capacity of the audit log. Once exceeded the
// oldest entries are dropped.
const DefaultAuditMaxEntries = 1000

// AuditLog is an append-only, capacity-bounded event log on top of a Store.
// The whole read-modify-write of an append happens under the write lock of
// the underlying store document, so a reader never observes an over-capacity
// list.
type AuditLog struct {
	log *jsonLog[entities.AuditEntry]
	max int
}

// NewAuditLog creates an audit log with the given entry cap. A cap of zero
// or less falls back to DefaultAuditMaxEntries.
func NewAuditLog(store Store, max int) *AuditLog {
	if max <= 0 {
		max = DefaultAuditMaxEntries
	}
	return &AuditLog{
		log: newJSONLog[entities.AuditEntry](store, auditKey),
		max: max,
	}
}

var _ ports.AuditLog = (*AuditLog)(nil)

// Append stores one entry, filling in identifier, timestamp and level
// defaults, and evicts the oldest entries past the cap.
func (l *AuditLog) Append(ctx context.Context, entry entities.AuditEntry) (*entities.AuditEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.Level == "" || !entry.Level.IsValid() {
		entry.Level = entities.AuditLevelInfo
	}
	if entry.Message == "" {
		entry.Message = "event"
	}
	if entry.Details == nil {
		entry.Details = map[string]interface{}{}
	}
	if entry.Meta == nil {
		entry.Meta = map[string]interface{}{}
	}

	err := l.log.update(ctx, func(entries []entities.AuditEntry) []entities.AuditEntry {
		entries = append(entries, entry)
		if len(entries) > l.max {
			entries = entries[len(entries)-l.max:]
		}
		return entries
	})
	if err != nil {
		return nil, fmt.Errorf("append audit entry: %w", err)
	}
	return &entry, nil
}

// List returns all retained entries, oldest first.
func (l *AuditLog) List(ctx context.Context) ([]*entities.AuditEntry, error) {
	entries, err := l.log.read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	out := make([]*entities.AuditEntry, len(entries))
	for i := range entries {
		out[i] = &entries[i]
	}
	return out, nil
}

// Clear removes every entry.
func (l *AuditLog) Clear(ctx context.Context) error {
	return l.log.clear(ctx)
}

// jsonLog is a mutex-guarded JSON array document in a Store namespace. The
// mutex serializes read-modify-write cycles so concurrent appends cannot
// lose entries.
type jsonLog[T any] struct {
	store Store
	key   string
	mu    sync.Mutex
}

func newJSONLog[T any](store Store, key string) *jsonLog[T] {
	return &jsonLog[T]{store: store, key: key}
}

func (j *jsonLog[T]) read(ctx context.Context) ([]T, error) {
	data, err := j.store.Read(ctx, j.key)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", j.key, err)
	}
	return items, nil
}

func (j *jsonLog[T]) update(ctx context.Context, fn func([]T) []T) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	items, err := j.read(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(fn(items))
	if err != nil {
		return fmt.Errorf("encode %s: %w", j.key, err)
	}
	return j.store.Write(ctx, j.key, data)
}

func (j *jsonLog[T]) clear(ctx context.Context) error {
	return j.store.Delete(ctx, j.key)
}
