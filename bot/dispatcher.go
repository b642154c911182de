package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Dosada05/league-bot/services"
)

// LinkIssuer creates spectator links for a chat.
type LinkIssuer interface {
	SpectatorLink(chatID int64) (string, error)
}

// Dispatcher turns Telegram updates into tournament events.
type Dispatcher struct {
	api         BotAPI
	messenger   *TelegramMessenger
	tournaments services.TournamentService
	links       LinkIssuer // nil disables /link
	logger      *slog.Logger
}

func NewDispatcher(api BotAPI, messenger *TelegramMessenger, tournaments services.TournamentService, links LinkIssuer, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		api:         api,
		messenger:   messenger,
		tournaments: tournaments,
		links:       links,
		logger:      logger,
	}
}

func (d *Dispatcher) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		d.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		d.handleMessage(ctx, update.Message)
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		var err error
		switch msg.Command() {
		case "start":
			err = d.tournaments.Start(ctx, chatID)
		case "cancel":
			err = d.tournaments.Cancel(ctx, chatID)
		case "finish":
			err = d.tournaments.RequestFinish(ctx, chatID)
			if errors.Is(err, services.ErrInvalidState) {
				// во время выбора команд завершать нечего
				err = services.ErrSessionNotFound
			}
		case "link":
			d.sendSpectatorLink(chatID)
			return
		default:
			return
		}
		d.reportCommandError(chatID, msg.Command(), err)
		return
	}

	if msg.Text == "" {
		return
	}
	input := services.MessageRef{ChatID: chatID, MessageID: msg.MessageID}
	err := d.tournaments.SubmitScore(ctx, chatID, msg.Text, input)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, services.ErrInvalidState):
		// обычная переписка в чате
	default:
		d.logger.Error("failed to handle score input", slog.Int64("chat_id", chatID), slog.Any("error", err))
	}
}

func (d *Dispatcher) reportCommandError(chatID int64, command string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, services.ErrSessionNotFound):
		d.messenger.reply(chatID, textNoTournament)
	default:
		d.logger.Error("failed to handle command",
			slog.Int64("chat_id", chatID),
			slog.String("command", command),
			slog.Any("error", err))
	}
}

func (d *Dispatcher) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	answer := ""
	defer func() {
		if _, err := d.api.Request(tgbotapi.NewCallback(cb.ID, answer)); err != nil {
			d.logger.Debug("callback not answered", slog.String("callback_id", cb.ID), slog.Any("error", err))
		}
	}()

	if cb.Message == nil || cb.Message.Chat == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	action, ok := parseCallback(cb.Data)
	if !ok {
		d.logger.Debug("unknown callback data", slog.Int64("chat_id", chatID), slog.String("data", cb.Data))
		return
	}

	var err error
	switch action.kind {
	case callbackTeamPrefix:
		err = d.tournaments.SelectTeam(ctx, chatID, action.team)
	case callbackConfirm:
		err = d.tournaments.ConfirmSelection(ctx, chatID)
	case callbackPickPrefix:
		err = d.tournaments.PickMatch(ctx, chatID, action.index)
	case callbackFinish:
		err = d.tournaments.RequestFinish(ctx, chatID)
	case callbackCancel:
		err = d.tournaments.Cancel(ctx, chatID)
	}

	switch {
	case err == nil:
	case errors.Is(err, services.ErrSessionNotFound):
		answer = textNoTournament
	case errors.Is(err, services.ErrInvalidState), errors.Is(err, services.ErrUnknownTeam):
		d.logger.Debug("stale button pressed", slog.Int64("chat_id", chatID), slog.String("data", cb.Data), slog.Any("error", err))
	default:
		d.logger.Error("failed to handle button",
			slog.Int64("chat_id", chatID),
			slog.String("data", cb.Data),
			slog.Any("error", err))
	}
}

func (d *Dispatcher) sendSpectatorLink(chatID int64) {
	if d.links == nil {
		d.messenger.reply(chatID, textLinksDisabled)
		return
	}
	link, err := d.links.SpectatorLink(chatID)
	if err != nil {
		d.logger.Error("failed to issue spectator link", slog.Int64("chat_id", chatID), slog.Any("error", err))
		return
	}
	d.messenger.reply(chatID, fmt.Sprintf(textSpectatorLink, link))
}
