package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const pollTimeoutSeconds = 60

// UpdateHandler consumes Telegram updates.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

// SetWebhook points Telegram at url.
func SetWebhook(api *tgbotapi.BotAPI, url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	if _, err := api.Request(wh); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	return nil
}

// RunPolling reads updates with long polling until ctx is done. Any webhook is removed
// first, since Telegram refuses getUpdates while one is set.
func RunPolling(ctx context.Context, api *tgbotapi.BotAPI, handler UpdateHandler, logger *slog.Logger) error {
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds
	updates := api.GetUpdatesChan(u)
	logger.Info("telegram long polling started", slog.String("bot", api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			logger.Info("telegram long polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			handler.HandleUpdate(ctx, update)
		}
	}
}
