package bot

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Dosada05/league-bot/models"
)

// Callback data of inline buttons.
const (
	callbackTeamPrefix = "team:"
	callbackPickPrefix = "pick:"
	callbackConfirm    = "confirm"
	callbackCancel     = "cancel"
	callbackFinish     = "finish"
)

const teamsPerRow = 2

func selectionKeyboard(catalog *models.Catalog, selected []models.Team) tgbotapi.InlineKeyboardMarkup {
	chosen := make(map[models.TeamKey]bool, len(selected))
	for _, t := range selected {
		chosen[t.Key] = true
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, team := range catalog.Teams() {
		label := team.Title()
		if chosen[team.Key] {
			label = textSelectedMark + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, callbackTeamPrefix+string(team.Key)))
		if len(row) == teamsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	var actions []tgbotapi.InlineKeyboardButton
	if len(selected) >= 2 {
		actions = append(actions, tgbotapi.NewInlineKeyboardButtonData(buttonConfirm, callbackConfirm))
	}
	actions = append(actions, tgbotapi.NewInlineKeyboardButtonData(buttonCancel, callbackCancel))
	rows = append(rows, actions)

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// pickerKeyboard lists pending fixtures; the first picker offers cancel, later ones finish.
func pickerKeyboard(catalog *models.Catalog, queue []models.Match, firstPick bool) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(queue)+1)
	for i, m := range queue {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(matchTitle(catalog, m), callbackPickPrefix+strconv.Itoa(i)),
		))
	}
	if firstPick {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(buttonCancel, callbackCancel)))
	} else {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(buttonFinish, callbackFinish)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func finishKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(buttonFinish, callbackFinish)),
	)
}

type callbackAction struct {
	kind  string
	team  models.TeamKey
	index int
}

func parseCallback(data string) (callbackAction, bool) {
	switch {
	case data == callbackConfirm, data == callbackCancel, data == callbackFinish:
		return callbackAction{kind: data}, true
	case strings.HasPrefix(data, callbackTeamPrefix):
		key := strings.TrimPrefix(data, callbackTeamPrefix)
		if key == "" {
			return callbackAction{}, false
		}
		return callbackAction{kind: callbackTeamPrefix, team: models.TeamKey(key)}, true
	case strings.HasPrefix(data, callbackPickPrefix):
		idx, err := strconv.Atoi(strings.TrimPrefix(data, callbackPickPrefix))
		if err != nil {
			return callbackAction{}, false
		}
		return callbackAction{kind: callbackPickPrefix, index: idx}, true
	}
	return callbackAction{}, false
}
