package services

import (
	"context"
	"time"

	"github.com/Dosada05/league-bot/models"
)

// MessageRef points at a chat message that may later be edited or deleted.
type MessageRef struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int   `json:"message_id"`
}

type ScoreboardView struct {
	Round     int                  `json:"round"`
	Standings []models.Standing    `json:"standings"`
	Matches   []models.MatchResult `json:"matches"`
}

// FinalReport is everything the closing message and the archive need.
type FinalReport struct {
	TournamentID string               `json:"tournament_id"`
	ChatID       int64                `json:"chat_id"`
	Teams        []models.TeamKey     `json:"teams"`
	Rounds       int                  `json:"rounds"`
	Standings    []models.Standing    `json:"standings"`
	Matches      []models.MatchResult `json:"matches"`
	Reason       models.FinishReason  `json:"reason"`
	StartedAt    time.Time            `json:"started_at"`
	FinishedAt   time.Time            `json:"finished_at"`
}

// Winner is the top row of the final table, empty when no team was selected.
func (r FinalReport) Winner() models.TeamKey {
	if len(r.Standings) == 0 {
		return ""
	}
	return r.Standings[0].Team
}

// Messenger renders tournament prompts in the chat. A nil prompt/board reference means
// "send a new message"; otherwise the referenced message is edited in place. Render
// methods return the reference of the message that now shows the content.
type Messenger interface {
	RenderSelectionPrompt(ctx context.Context, chatID int64, prompt *MessageRef, selected []models.Team) (MessageRef, error)
	RenderMatchPicker(ctx context.Context, chatID int64, prompt *MessageRef, queue []models.Match, firstPick bool) (MessageRef, error)
	RenderScorePrompt(ctx context.Context, chatID int64, prompt *MessageRef, round int, match models.Match) (MessageRef, error)
	RenderScoreboard(ctx context.Context, chatID int64, board *MessageRef, view ScoreboardView) (MessageRef, error)
	RenderFinalReport(ctx context.Context, chatID int64, report FinalReport) (MessageRef, error)

	NotifyInvalidScore(ctx context.Context, chatID int64) (MessageRef, error)
	NotifyRoundStarted(ctx context.Context, chatID int64, round int) (MessageRef, error)
	NotifyCancelled(ctx context.Context, chatID int64) error

	// DeleteMessages removes messages, ignoring ones that are already gone.
	DeleteMessages(ctx context.Context, refs ...MessageRef)
}

// Broadcaster pushes live updates to spectators of a room.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// Archiver stores the report of a finished tournament.
type Archiver interface {
	Archive(ctx context.Context, report FinalReport) error
}
