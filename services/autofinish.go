package services

import (
	"context"
	"log/slog"

	"github.com/Dosada05/league-bot/models"
)

// armAutoFinishLocked schedules the inactivity finish once per session. The deadline
// counts from the first recorded result and is not pushed back by later activity.
func (svc *tournamentService) armAutoFinishLocked(s *Session) {
	if s.timer != nil {
		return
	}
	s.timer = svc.clock.AfterFunc(svc.autoFinishAfter, func() {
		svc.autoFinish(s)
	})
	svc.logger.Debug("auto-finish armed",
		slog.Int64("chat_id", s.ChatID),
		slog.String("tournament_id", s.ID),
		slog.Duration("after", svc.autoFinishAfter))
}

func (svc *tournamentService) autoFinish(s *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished || s.state.Terminal() || len(s.matchLog) == 0 {
		return
	}
	svc.logger.Info("auto-finishing idle tournament", slog.Int64("chat_id", s.ChatID), slog.String("tournament_id", s.ID))
	if err := svc.finalizeLocked(context.Background(), s, models.FinishAuto); err != nil {
		svc.logger.Warn("auto-finish skipped", slog.Int64("chat_id", s.ChatID), slog.Any("error", err))
	}
}
