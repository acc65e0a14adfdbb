package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestWithComponentTagsEntries(t *testing.T) {
	log, logs := newObservedLogger()

	log.WithComponent("server").Infow("started")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "server", entries[0].ContextMap()["component"])
}

func TestWithErrorTagsEntries(t *testing.T) {
	log, logs := newObservedLogger()

	log.WithError(errors.New("boom")).Errorw("request failed")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
}

func TestLogSecurityEventCarriesDetails(t *testing.T) {
	log, logs := newObservedLogger()

	log.LogSecurityEvent("task_deleted_without_ownership_check", "juan", "10.0.0.1", map[string]interface{}{
		"task_id": "abc",
	})

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "task_deleted_without_ownership_check", fields["security_event"])
	assert.Equal(t, "juan", fields["username"])
	assert.Equal(t, "10.0.0.1", fields["ip"])
	assert.Equal(t, "abc", fields["task_id"])
}
