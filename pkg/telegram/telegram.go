package telegram

import (
	"context"
	"fmt"
	"sync"
	"time"

	"churn-analytics/config"
	"churn-analytics/pkg/logger"

	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

// Sender is the subset of telebot.Bot used by the notifier.
type Sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// Notifier pushes pipeline summaries and alerts to a single Telegram chat.
// Sends are asynchronous and rate limited; failures are logged, never returned
// to the pipeline that triggered them.
type Notifier struct {
	cfg     *config.TelegramConfig
	log     *logger.Logger
	sender  Sender
	chat    *telebot.Chat
	limiter *rate.Limiter
	wg      sync.WaitGroup
}

// NewBot builds an offline telebot client: no getMe call at start-up and no
// poller, since the service only sends.
func NewBot(cfg *config.TelegramConfig) (*telebot.Bot, error) {
	return telebot.NewBot(telebot.Settings{
		Token:   cfg.BotToken,
		Offline: true,
	})
}

func NewNotifier(cfg *config.TelegramConfig, log *logger.Logger, sender Sender) *Notifier {
	perSecond := cfg.MaxGlobalRequestPerSecond
	if perSecond <= 0 {
		perSecond = 1
	}
	return &Notifier{
		cfg:     cfg,
		log:     log,
		sender:  sender,
		chat:    &telebot.Chat{ID: cfg.ChatID},
		limiter: rate.NewLimiter(rate.Limit(perSecond), perSecond),
	}
}

// Notify sends message in the background.
func (n *Notifier) Notify(ctx context.Context, message string) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.send(context.WithoutCancel(ctx), message); err != nil {
			n.log.WarnContext(ctx, "Failed to send telegram notification", logger.ErrorField(err))
		}
	}()
}

// Alert implements logger.Alerter.
func (n *Notifier) Alert(message string) {
	n.Notify(context.Background(), message)
}

func (n *Notifier) send(ctx context.Context, message string) error {
	timeout := n.cfg.TimeoutDuration
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for telegram rate limit: %w", err)
	}
	if _, err := n.sender.Send(n.chat, message, telebot.ModeHTML); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// Wait blocks until every in-flight notification has finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
