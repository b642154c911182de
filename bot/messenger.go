package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Dosada05/league-bot/models"
	"github.com/Dosada05/league-bot/services"
)

// BotAPI is the part of *tgbotapi.BotAPI used to talk to Telegram.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// TelegramMessenger renders tournament prompts as Telegram messages with inline keyboards.
type TelegramMessenger struct {
	api     BotAPI
	catalog *models.Catalog
	logger  *slog.Logger
}

var _ services.Messenger = (*TelegramMessenger)(nil)

func NewTelegramMessenger(api BotAPI, catalog *models.Catalog, logger *slog.Logger) *TelegramMessenger {
	return &TelegramMessenger{api: api, catalog: catalog, logger: logger}
}

func (m *TelegramMessenger) RenderSelectionPrompt(_ context.Context, chatID int64, prompt *services.MessageRef, selected []models.Team) (services.MessageRef, error) {
	kb := selectionKeyboard(m.catalog, selected)
	return m.sendOrEdit(chatID, prompt, textSelectTeams, &kb, "")
}

func (m *TelegramMessenger) RenderMatchPicker(_ context.Context, chatID int64, prompt *services.MessageRef, queue []models.Match, firstPick bool) (services.MessageRef, error) {
	text := textNextPick
	if firstPick {
		text = textFirstPick
	}
	kb := pickerKeyboard(m.catalog, queue, firstPick)
	return m.sendOrEdit(chatID, prompt, text, &kb, "")
}

func (m *TelegramMessenger) RenderScorePrompt(_ context.Context, chatID int64, prompt *services.MessageRef, round int, match models.Match) (services.MessageRef, error) {
	kb := finishKeyboard()
	return m.sendOrEdit(chatID, prompt, scorePromptText(m.catalog, round, match), &kb, "")
}

func (m *TelegramMessenger) RenderScoreboard(_ context.Context, chatID int64, board *services.MessageRef, view services.ScoreboardView) (services.MessageRef, error) {
	return m.sendOrEdit(chatID, board, scoreboardText(m.catalog, view), nil, tgbotapi.ModeMarkdown)
}

func (m *TelegramMessenger) RenderFinalReport(_ context.Context, chatID int64, report services.FinalReport) (services.MessageRef, error) {
	return m.sendOrEdit(chatID, nil, finalReportText(m.catalog, report), nil, tgbotapi.ModeMarkdown)
}

func (m *TelegramMessenger) NotifyInvalidScore(_ context.Context, chatID int64) (services.MessageRef, error) {
	return m.sendOrEdit(chatID, nil, textInvalidScore, nil, "")
}

func (m *TelegramMessenger) NotifyRoundStarted(_ context.Context, chatID int64, round int) (services.MessageRef, error) {
	return m.sendOrEdit(chatID, nil, roundStartedText(round), nil, "")
}

func (m *TelegramMessenger) NotifyCancelled(_ context.Context, chatID int64) error {
	_, err := m.sendOrEdit(chatID, nil, textCancelled, nil, "")
	return err
}

// DeleteMessages never fails; messages that are already gone are skipped.
func (m *TelegramMessenger) DeleteMessages(_ context.Context, refs ...services.MessageRef) {
	for _, ref := range refs {
		if _, err := m.api.Request(tgbotapi.NewDeleteMessage(ref.ChatID, ref.MessageID)); err != nil {
			m.logger.Debug("message not deleted",
				slog.Int64("chat_id", ref.ChatID),
				slog.Int("message_id", ref.MessageID),
				slog.Any("error", err))
		}
	}
}

// reply sends a plain text message outside the tournament flow.
func (m *TelegramMessenger) reply(chatID int64, text string) {
	if _, err := m.sendOrEdit(chatID, nil, text, nil, ""); err != nil {
		m.logger.Warn("failed to send reply", slog.Int64("chat_id", chatID), slog.Any("error", err))
	}
}

// sendOrEdit edits the referenced message in place or sends a new one. When the edit
// fails because the message is gone, a new message is sent instead.
func (m *TelegramMessenger) sendOrEdit(chatID int64, ref *services.MessageRef, text string, kb *tgbotapi.InlineKeyboardMarkup, parseMode string) (services.MessageRef, error) {
	if ref != nil {
		edit := tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, text)
		edit.ReplyMarkup = kb
		edit.ParseMode = parseMode
		_, err := m.api.Send(edit)
		if err == nil || isNotModified(err) {
			return *ref, nil
		}
		m.logger.Debug("edit failed, sending new message",
			slog.Int64("chat_id", ref.ChatID),
			slog.Int("message_id", ref.MessageID),
			slog.Any("error", err))
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = parseMode
	if kb != nil {
		msg.ReplyMarkup = *kb
	}
	sent, err := m.api.Send(msg)
	if err != nil {
		return services.MessageRef{}, fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}
	return services.MessageRef{ChatID: chatID, MessageID: sent.MessageID}, nil
}

func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}
