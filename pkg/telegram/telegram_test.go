package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"

	"churn-analytics/config"
	"churn-analytics/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeSender) Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, what.(string))
	return &telebot.Message{}, f.err
}

func TestNotifier_Notify(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(&config.TelegramConfig{ChatID: 99, MaxGlobalRequestPerSecond: 5}, logger.NewNop(), sender)

	n.Notify(context.Background(), "hello")
	n.Alert("alert")
	n.Wait()

	require.Len(t, sender.sent, 2)
	assert.ElementsMatch(t, []string{"hello", "alert"}, sender.sent)
}

func TestNotifier_SendErrorIsSwallowed(t *testing.T) {
	sender := &fakeSender{err: errors.New("boom")}
	n := NewNotifier(&config.TelegramConfig{ChatID: 1}, logger.NewNop(), sender)

	n.Notify(context.Background(), "hello")
	n.Wait()

	assert.Len(t, sender.sent, 1)
}

func TestFormatSummary(t *testing.T) {
	msg := FormatSummary("Churn <model> trained",
		Field{Name: "accuracy", Value: 0.91234},
		Field{Name: "predictions", Value: 120},
	)
	assert.Equal(t, "<b>Churn &lt;model&gt; trained</b>\n• accuracy: 0.9123\n• predictions: 120", msg)
}
