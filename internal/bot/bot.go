// Package bot connects the Telegram transport to the message-handling
// pipeline.
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/jkirui/shellbot-agent/config"
	"github.com/jkirui/shellbot-agent/internal/executor"
)

// Bot long-polls the Telegram Bot API and dispatches each update to the
// handler on its own goroutine.
type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	logger  *zap.Logger
}

// New authenticates against the Bot API and wires up the handler.
func New(cfg *config.Config, gateway Gateway, exec *executor.Executor, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}

	b := &Bot{
		api:    api,
		logger: logger,
	}
	b.handler = NewHandler(cfg, gateway, exec, telegramSender{api: api}, logger)

	return b, nil
}

// Run blocks, receiving updates until ctx is canceled. Any webhook left
// over from a previous deployment is removed first so long polling works.
func (b *Bot) Run(ctx context.Context) error {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		b.logger.Warn("deleteWebhook failed", zap.Error(err))
	}

	b.logger.Info("listening for telegram messages",
		zap.String("bot", b.api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}

			msg := update.Message
			if msg == nil {
				msg = update.ChannelPost
			}
			if msg == nil {
				b.logger.Debug("ignoring unhandled update type", zap.Int("update_id", update.UpdateID))
				continue
			}

			inbound := Message{
				ChatID: msg.Chat.ID,
				From:   senderName(msg),
				Text:   msg.Text,
			}

			// One pipeline per message; pipelines never share mutable state
			go b.handler.Handle(ctx, inbound)
		}
	}
}

func senderName(msg *tgbotapi.Message) string {
	if msg.From != nil {
		return msg.From.FirstName
	}
	return "unknown"
}

type telegramSender struct {
	api *tgbotapi.BotAPI
}

func (s telegramSender) Send(chatID int64, text string) error {
	_, err := s.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
