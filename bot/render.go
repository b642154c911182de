package bot

import (
	"fmt"
	"strings"

	"github.com/Dosada05/league-bot/models"
	"github.com/Dosada05/league-bot/services"
)

// Тексты сообщений бота.
const (
	textSelectTeams     = "Выберите команды, чтобы начать турнир:"
	textFirstPick       = "Круг 1: выберите, кто играет первым"
	textNextPick        = "Круг 1: выберите следующий матч:"
	textInvalidScore    = "Формат X:Y"
	textCancelled       = "Турнир отменён. Для создания нового турнира нажмите /start"
	textNoTournament    = "Нет активного турнира. Для создания нового турнира нажмите /start"
	textFinishedFooter  = "Турнир завершен! Для создания нового турнира нажмите /start"
	textLinksDisabled   = "Ссылки для зрителей не настроены."
	textSpectatorLink   = "Ссылка для зрителей:\n%s"
	textSelectedMark    = "✔️ "
	buttonConfirm       = "✅ Создать"
	buttonCancel        = "❌ Отменить"
	buttonFinish        = "🏆 Завершить"
	tableHeaderTemplate = "%-2s %-12s %-2s %-3s %-4s"
	tableRowTemplate    = "%-2d %-12s %-2d %-3d %-4d"
)

func matchTitle(catalog *models.Catalog, m models.Match) string {
	return catalog.Resolve(m.Home).Title() + " vs " + catalog.Resolve(m.Away).Title()
}

func scorePromptText(catalog *models.Catalog, round int, m models.Match) string {
	if round <= 1 {
		return fmt.Sprintf("Введите счёт матча %s (например 2:1):", matchTitle(catalog, m))
	}
	return fmt.Sprintf("Матч %s:", matchTitle(catalog, m))
}

func roundStartedText(round int) string {
	return fmt.Sprintf("Начинается Круг %d!", round)
}

func standingsTable(catalog *models.Catalog, standings []models.Standing) []string {
	lines := []string{"```", fmt.Sprintf(tableHeaderTemplate, "№", "Команда", "И", "+/-", "Очки")}
	for i, s := range standings {
		lines = append(lines, fmt.Sprintf(tableRowTemplate,
			i+1, catalog.Resolve(s.Team).Label, s.Games, s.GoalDifference(), s.Points))
	}
	return append(lines, "```")
}

// resultLines lists results in log order with a blank line before every round.
func resultLines(catalog *models.Catalog, log []models.MatchResult) []string {
	lines := []string{"", "*Результаты:*"}
	round := 0
	for _, r := range log {
		if r.Round != round {
			round = r.Round
			lines = append(lines, "")
		}
		lines = append(lines, fmt.Sprintf("%s — %s %d:%d",
			catalog.Resolve(r.Home).Label, catalog.Resolve(r.Away).Label, r.HomeScore, r.AwayScore))
	}
	return lines
}

func scoreboardText(catalog *models.Catalog, view services.ScoreboardView) string {
	lines := []string{"*Текущая таблица:*"}
	lines = append(lines, standingsTable(catalog, view.Standings)...)
	lines = append(lines, resultLines(catalog, view.Matches)...)
	return strings.Join(lines, "\n")
}

func finalReportText(catalog *models.Catalog, report services.FinalReport) string {
	var lines []string
	if winner := report.Winner(); winner != "" {
		lines = append(lines, fmt.Sprintf("*🏆 Победили %s! 🏆*", catalog.Resolve(winner).Label))
	}
	lines = append(lines, "", "*Итоговая таблица:*")
	lines = append(lines, standingsTable(catalog, report.Standings)...)
	lines = append(lines, resultLines(catalog, report.Matches)...)
	lines = append(lines, "", textFinishedFooter)
	return strings.Join(lines, "\n")
}
