package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Dosada05/league-bot/brackets"
	"github.com/Dosada05/league-bot/models"
)

const DefaultAutoFinishAfter = 2 * time.Hour

// TournamentService drives the per-chat tournament conversation. Every method is one
// input event; recoverable user mistakes are answered in the chat and return nil.
type TournamentService interface {
	Start(ctx context.Context, chatID int64) error
	SelectTeam(ctx context.Context, chatID int64, key models.TeamKey) error
	ConfirmSelection(ctx context.Context, chatID int64) error
	PickMatch(ctx context.Context, chatID int64, index int) error
	SubmitScore(ctx context.Context, chatID int64, text string, input MessageRef) error
	RequestFinish(ctx context.Context, chatID int64) error
	Cancel(ctx context.Context, chatID int64) error

	Snapshot(chatID int64) (SessionSnapshot, error)
	ActiveSessions() int
}

type TournamentDeps struct {
	Catalog   *models.Catalog
	Generator brackets.BracketGenerator
	Messenger Messenger
	Live      Broadcaster // optional
	Archiver  Archiver    // optional
	Metrics   *Metrics
	Clock     Clock
	Logger    *slog.Logger

	AutoFinishAfter time.Duration
}

type tournamentService struct {
	catalog   *models.Catalog
	generator brackets.BracketGenerator
	messenger Messenger
	live      Broadcaster
	archiver  Archiver
	metrics   *Metrics
	clock     Clock
	logger    *slog.Logger

	autoFinishAfter time.Duration

	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewTournamentService(deps TournamentDeps) TournamentService {
	svc := &tournamentService{
		catalog:         deps.Catalog,
		generator:       deps.Generator,
		messenger:       deps.Messenger,
		live:            deps.Live,
		archiver:        deps.Archiver,
		metrics:         deps.Metrics,
		clock:           deps.Clock,
		logger:          deps.Logger,
		autoFinishAfter: deps.AutoFinishAfter,
		sessions:        make(map[int64]*Session),
	}
	if svc.catalog == nil {
		svc.catalog = models.DefaultCatalog()
	}
	if svc.generator == nil {
		svc.generator = brackets.NewRoundRobinGenerator()
	}
	if svc.clock == nil {
		svc.clock = systemClock{}
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.autoFinishAfter <= 0 {
		svc.autoFinishAfter = DefaultAutoFinishAfter
	}
	return svc
}

// Start opens team selection. A tournament already running in the chat is dropped.
func (svc *tournamentService) Start(ctx context.Context, chatID int64) error {
	s := newSession(chatID, svc.clock.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	svc.mu.Lock()
	old := svc.sessions[chatID]
	svc.sessions[chatID] = s
	svc.setActiveLocked()
	svc.mu.Unlock()

	if old != nil {
		old.mu.Lock()
		if !old.state.Terminal() {
			svc.abortLocked(ctx, old)
			svc.logger.Info("running tournament replaced by /start", slog.Int64("chat_id", chatID), slog.String("tournament_id", old.ID))
		}
		old.mu.Unlock()
	}

	if svc.metrics != nil {
		svc.metrics.TournamentsStarted.Inc()
	}
	svc.renderSelection(ctx, s)
	return nil
}

func (svc *tournamentService) SelectTeam(ctx context.Context, chatID int64, key models.TeamKey) error {
	return svc.withSession(chatID, func(s *Session) error {
		if s.state != models.StateSelectTeams {
			return fmt.Errorf("%w: team selection in state %s", ErrInvalidState, s.state)
		}
		team, ok := svc.catalog.Lookup(key)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTeam, key)
		}
		s.toggleTeam(team)
		svc.renderSelection(ctx, s)
		return nil
	})
}

func (svc *tournamentService) ConfirmSelection(ctx context.Context, chatID int64) error {
	return svc.withSession(chatID, func(s *Session) error {
		if s.state != models.StateSelectTeams {
			return fmt.Errorf("%w: confirm in state %s", ErrInvalidState, s.state)
		}
		if err := s.confirm(svc.generator); err != nil {
			if errors.Is(err, brackets.ErrInsufficientTeams) {
				svc.logger.Debug("confirm rejected", slog.Int64("chat_id", chatID), slog.Int("teams", len(s.teams)))
				svc.renderSelection(ctx, s)
				return nil
			}
			return fmt.Errorf("failed to build schedule for chat %d: %w", chatID, err)
		}
		s.ID = uuid.NewString()

		svc.logger.Info("tournament confirmed",
			slog.Int64("chat_id", chatID),
			slog.String("tournament_id", s.ID),
			slog.Int("teams", len(s.teams)),
			slog.Int("fixtures", s.rounds.Remaining()))

		svc.renderPicker(ctx, s, true)
		svc.broadcast(s, brackets.MessageScoreboardUpdated, s.snapshot())
		return nil
	})
}

func (svc *tournamentService) PickMatch(ctx context.Context, chatID int64, index int) error {
	return svc.withSession(chatID, func(s *Session) error {
		if s.state != models.StateSelectMatch {
			return fmt.Errorf("%w: match pick in state %s", ErrInvalidState, s.state)
		}
		match, err := s.pickMatch(index)
		if err != nil {
			if errors.Is(err, brackets.ErrIndexOutOfRange) {
				svc.logger.Debug("match pick ignored", slog.Int64("chat_id", chatID), slog.Int("index", index))
				svc.renderPicker(ctx, s, len(s.matchLog) == 0)
				return nil
			}
			return err
		}
		svc.renderScorePrompt(ctx, s, match)
		return nil
	})
}

func (svc *tournamentService) SubmitScore(ctx context.Context, chatID int64, text string, input MessageRef) error {
	return svc.withSession(chatID, func(s *Session) error {
		if s.state != models.StateRecordResult {
			return fmt.Errorf("%w: score in state %s", ErrInvalidState, s.state)
		}
		s.ephemeral = append(s.ephemeral, input)

		if strings.TrimSpace(text) == "/finish" {
			return svc.finalizeLocked(ctx, s, models.FinishManual)
		}

		home, away, err := ParseScore(text)
		if err != nil {
			if svc.metrics != nil {
				svc.metrics.InvalidScores.Inc()
			}
			svc.logger.Debug("score rejected", slog.Int64("chat_id", chatID), slog.String("input", text))
			ref, nErr := svc.messenger.NotifyInvalidScore(ctx, chatID)
			if nErr != nil {
				svc.transportFailed(s, "invalid score notice", nErr)
			} else {
				s.ephemeral = append(s.ephemeral, ref)
			}
			return nil
		}

		result, err := s.record(home, away, svc.clock.Now())
		if err != nil {
			return err
		}
		if svc.metrics != nil {
			svc.metrics.ResultsRecorded.Inc()
		}
		svc.armAutoFinishLocked(s)

		svc.logger.Info("result recorded",
			slog.Int64("chat_id", chatID),
			slog.String("tournament_id", s.ID),
			slog.Int("round", result.Round),
			slog.String("home", string(result.Home)),
			slog.String("away", string(result.Away)),
			slog.Int("home_score", home),
			slog.Int("away_score", away))

		svc.messenger.DeleteMessages(ctx, s.takeMessagesToDelete()...)
		svc.renderScoreboard(ctx, s)
		svc.broadcast(s, brackets.MessageScoreboardUpdated, s.snapshot())

		next, needsPick, roundStarted, err := s.advance()
		if err != nil {
			return fmt.Errorf("failed to advance tournament %s: %w", s.ID, err)
		}
		if needsPick {
			svc.renderPicker(ctx, s, false)
			return nil
		}
		if roundStarted {
			svc.roundStartedLocked(ctx, s)
		}
		svc.renderScorePrompt(ctx, s, next)
		return nil
	})
}

func (svc *tournamentService) RequestFinish(ctx context.Context, chatID int64) error {
	return svc.withSession(chatID, func(s *Session) error {
		if s.state != models.StateSelectMatch && s.state != models.StateRecordResult {
			return fmt.Errorf("%w: finish in state %s", ErrInvalidState, s.state)
		}
		return svc.finalizeLocked(ctx, s, models.FinishManual)
	})
}

func (svc *tournamentService) Cancel(ctx context.Context, chatID int64) error {
	return svc.withSession(chatID, func(s *Session) error {
		svc.abortLocked(ctx, s)
		if err := svc.messenger.NotifyCancelled(ctx, chatID); err != nil {
			svc.transportFailed(s, "cancel notice", err)
		}
		svc.logger.Info("tournament cancelled", slog.Int64("chat_id", chatID), slog.String("tournament_id", s.ID))
		return nil
	})
}

func (svc *tournamentService) Snapshot(chatID int64) (SessionSnapshot, error) {
	var snap SessionSnapshot
	err := svc.withSession(chatID, func(s *Session) error {
		snap = s.snapshot()
		return nil
	})
	return snap, err
}

func (svc *tournamentService) ActiveSessions() int {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return len(svc.sessions)
}

// withSession runs fn with the chat's session locked. A session that reached a
// terminal state between lookup and locking counts as missing.
func (svc *tournamentService) withSession(chatID int64, fn func(s *Session) error) error {
	svc.mu.RLock()
	s, ok := svc.sessions[chatID]
	svc.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Terminal() {
		return ErrSessionNotFound
	}
	return fn(s)
}

// finalizeLocked is the single way into FINISHED. Later calls return
// ErrAlreadyFinished and emit nothing.
func (svc *tournamentService) finalizeLocked(ctx context.Context, s *Session, reason models.FinishReason) error {
	if s.finished {
		return ErrAlreadyFinished
	}
	s.finished = true
	s.finishedAt = svc.clock.Now()
	s.reason = reason
	s.state = models.StateFinished
	s.current = nil
	s.stopTimer()

	refs := s.takeMessagesToDelete()
	if s.scoreboard != nil {
		refs = append(refs, *s.scoreboard)
		s.scoreboard = nil
	}
	svc.messenger.DeleteMessages(ctx, refs...)

	report := s.finalReport()
	if _, err := svc.messenger.RenderFinalReport(ctx, s.ChatID, report); err != nil {
		svc.transportFailed(s, "final report", err)
	}

	svc.remove(s)
	if svc.metrics != nil {
		svc.metrics.finished(reason)
	}
	svc.broadcast(s, brackets.MessageTournamentFinished, report)

	svc.logger.Info("tournament finished",
		slog.Int64("chat_id", s.ChatID),
		slog.String("tournament_id", s.ID),
		slog.String("reason", string(reason)),
		slog.Int("rounds", report.Rounds),
		slog.Int("results", len(report.Matches)),
		slog.String("winner", string(report.Winner())))

	if svc.archiver != nil && len(report.Matches) > 0 {
		if err := svc.archiver.Archive(ctx, report); err != nil {
			svc.logger.Error("failed to archive tournament",
				slog.Int64("chat_id", s.ChatID),
				slog.String("tournament_id", s.ID),
				slog.Any("error", err))
		}
	}
	return nil
}

// abortLocked moves the session to CANCELLED and forgets it.
func (svc *tournamentService) abortLocked(ctx context.Context, s *Session) {
	s.state = models.StateCanceled
	s.current = nil
	s.stopTimer()
	svc.messenger.DeleteMessages(ctx, s.takeMessagesToDelete()...)
	svc.remove(s)
	if svc.metrics != nil {
		svc.metrics.TournamentsCanceled.Inc()
	}
	svc.broadcast(s, brackets.MessageTournamentCancelled, map[string]int64{"chat_id": s.ChatID})
}

func (svc *tournamentService) roundStartedLocked(ctx context.Context, s *Session) {
	round := s.rounds.Round()
	if svc.metrics != nil {
		svc.metrics.RoundsStarted.Inc()
	}
	ref, err := svc.messenger.NotifyRoundStarted(ctx, s.ChatID, round)
	if err != nil {
		svc.transportFailed(s, "round notice", err)
	} else {
		s.roundNotice = &ref
	}
	svc.broadcast(s, brackets.MessageRoundStarted, map[string]int{"round": round})
	svc.logger.Info("round started", slog.Int64("chat_id", s.ChatID), slog.String("tournament_id", s.ID), slog.Int("round", round))
}

// remove drops s from the registry unless a newer session already took its chat.
func (svc *tournamentService) remove(s *Session) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.sessions[s.ChatID] == s {
		delete(svc.sessions, s.ChatID)
	}
	svc.setActiveLocked()
}

func (svc *tournamentService) setActiveLocked() {
	if svc.metrics != nil {
		svc.metrics.ActiveSessions.Set(float64(len(svc.sessions)))
	}
}

func (svc *tournamentService) renderSelection(ctx context.Context, s *Session) {
	ref, err := svc.messenger.RenderSelectionPrompt(ctx, s.ChatID, s.prompt, s.Teams())
	svc.keepPrompt(s, ref, err, "selection prompt")
}

func (svc *tournamentService) renderPicker(ctx context.Context, s *Session, firstPick bool) {
	ref, err := svc.messenger.RenderMatchPicker(ctx, s.ChatID, s.prompt, s.Queue(), firstPick)
	svc.keepPrompt(s, ref, err, "match picker")
}

func (svc *tournamentService) renderScorePrompt(ctx context.Context, s *Session, match models.Match) {
	ref, err := svc.messenger.RenderScorePrompt(ctx, s.ChatID, s.prompt, s.Round(), match)
	svc.keepPrompt(s, ref, err, "score prompt")
}

func (svc *tournamentService) renderScoreboard(ctx context.Context, s *Session) {
	ref, err := svc.messenger.RenderScoreboard(ctx, s.ChatID, s.scoreboard, s.scoreboardView())
	if err != nil {
		svc.transportFailed(s, "scoreboard", err)
		return
	}
	s.scoreboard = &ref
}

func (svc *tournamentService) keepPrompt(s *Session, ref MessageRef, err error, what string) {
	if err != nil {
		svc.transportFailed(s, what, err)
		return
	}
	s.prompt = &ref
}

func (svc *tournamentService) transportFailed(s *Session, what string, err error) {
	svc.logger.Warn("failed to deliver "+what,
		slog.Int64("chat_id", s.ChatID),
		slog.String("state", string(s.state)),
		slog.Any("error", err))
}

func (svc *tournamentService) broadcast(s *Session, kind string, payload interface{}) {
	if svc.live == nil {
		return
	}
	room := brackets.RoomForChat(s.ChatID)
	svc.live.BroadcastToRoom(room, brackets.LiveMessage{Type: kind, Payload: payload, RoomID: room})
}
