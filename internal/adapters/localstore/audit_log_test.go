package localstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackbench/core/internal/domain/entities"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestAuditLogAppendFillsDefaults(t *testing.T) {
	log := NewAuditLog(newTestFileStore(t), 0)

	entry, err := log.Append(context.Background(), entities.AuditEntry{})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.Timestamp.IsZero())
	assert.Equal(t, entities.AuditLevelInfo, entry.Level)
	assert.Equal(t, "event", entry.Message)
	assert.NotNil(t, entry.Details)
	assert.NotNil(t, entry.Meta)
}

func TestAuditLogNormalizesUnknownLevel(t *testing.T) {
	log := NewAuditLog(newTestFileStore(t), 0)

	entry, err := log.Append(context.Background(), entities.AuditEntry{Level: "critical", Message: "x"})
	require.NoError(t, err)
	assert.Equal(t, entities.AuditLevelInfo, entry.Level)
}

func TestAuditLogEvictsOldestBeyondCap(t *testing.T) {
	log := NewAuditLog(newTestFileStore(t), 5)

	for i := 0; i < 7; i++ {
		_, err := log.Append(context.Background(), entities.AuditEntry{
			Message: fmt.Sprintf("event %d", i),
		})
		require.NoError(t, err)
	}

	entries, err := log.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, "event 2", entries[0].Message, "oldest entries are dropped first")
	assert.Equal(t, "event 6", entries[4].Message)
}

func TestAuditLogListOrderIsOldestFirst(t *testing.T) {
	log := NewAuditLog(newTestFileStore(t), 10)

	for _, msg := range []string{"first", "second", "third"} {
		_, err := log.Append(context.Background(), entities.AuditEntry{Message: msg})
		require.NoError(t, err)
	}

	entries, err := log.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "first", entries[0].Message)
	assert.Equal(t, "third", entries[2].Message)
}

func TestAuditLogClear(t *testing.T) {
	log := NewAuditLog(newTestFileStore(t), 10)

	_, err := log.Append(context.Background(), entities.AuditEntry{Message: "x"})
	require.NoError(t, err)

	require.NoError(t, log.Clear(context.Background()))

	entries, err := log.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Clearing an already empty log is fine.
	assert.NoError(t, log.Clear(context.Background()))
}

func TestFileStoreReadMissingKey(t *testing.T) {
	store := newTestFileStore(t)

	data, err := store.Read(context.Background(), "never_written")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestFileStoreWriteReadRoundTrip(t *testing.T) {
	store := newTestFileStore(t)

	require.NoError(t, store.Write(context.Background(), "k", []byte(`[1,2,3]`)))
	data, err := store.Read(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1,2,3]`), data)

	require.NoError(t, store.Delete(context.Background(), "k"))
	data, err = store.Read(context.Background(), "k")
	require.NoError(t, err)
	assert.Nil(t, data)
}
