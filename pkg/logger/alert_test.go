package logger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingAlerter struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingAlerter) Alert(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

func TestAlertCore_ForwardsOnlyFlaggedEntries(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	alerter := &recordingAlerter{}
	log := (&Logger{zap.New(core)}).WithAlerter(alerter, zapcore.InfoLevel)

	ctx := context.Background()
	log.ErrorContext(ctx, "plain error")
	log.ErrorContextWithAlert(ctx, "training failed", StringField("pipeline", "churn"))

	assert.Equal(t, 2, logs.Len())
	require.Len(t, alerter.messages, 1)
	assert.Contains(t, alerter.messages[0], "training failed")
	assert.Contains(t, alerter.messages[0], "pipeline: churn")
	assert.NotContains(t, alerter.messages[0], alertFieldKey)
}

func TestAlertCore_RespectsMinLevel(t *testing.T) {
	core, _ := observer.New(zapcore.DebugLevel)
	alerter := &recordingAlerter{}
	log := (&Logger{zap.New(core)}).WithAlerter(alerter, zapcore.ErrorLevel)

	log.InfoContextWithAlert(context.Background(), "run finished")

	assert.Empty(t, alerter.messages)
}
