package handlers

import (
	"context"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Dosada05/league-bot/bot"
)

type WebhookHandler struct {
	updates bot.UpdateHandler
	logger  *slog.Logger
}

func NewWebhookHandler(updates bot.UpdateHandler, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{updates: updates, logger: logger}
}

// ServeHTTP обрабатывает POST /telegram/webhook/{secret}
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := readJSON(w, r, &update); err != nil {
		h.logger.Warn("malformed telegram update", slog.Any("error", err))
		badRequestResponse(w, r, err)
		return
	}

	// Telegram повторяет доставку при не-2xx ответе, поэтому апдейт обрабатывается
	// до конца даже если клиент закрыл соединение.
	h.updates.HandleUpdate(context.WithoutCancel(r.Context()), update)
	w.WriteHeader(http.StatusOK)
}
