package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithRun_ScopesContextLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := &Logger{zap.New(core)}

	ctx := log.WithRun(context.Background(), "churn", "run-1")
	log.InfoContext(ctx, "scored", IntField("rows", 40))
	log.Info("outside run")

	entries := logs.All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.Equal(t, "churn", fields["pipeline"])
	assert.Equal(t, "run-1", fields["run_id"])
	assert.EqualValues(t, 40, fields["rows"])
	assert.NotContains(t, entries[1].ContextMap(), "run_id")
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New("loud", "json")
	assert.Error(t, err)

	l, err := New("debug", "console")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}
