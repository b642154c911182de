package models

import "time"

// ConversationState is the position of a chat tournament in the conversation flow.
type ConversationState string

const (
	StateSelectTeams  ConversationState = "select_teams"
	StateSelectMatch  ConversationState = "select_match"
	StateRecordResult ConversationState = "record_result"
	StateFinished     ConversationState = "finished"
	StateCanceled     ConversationState = "canceled"
)

func (s ConversationState) Terminal() bool {
	return s == StateFinished || s == StateCanceled
}

// FinishReason tells how a tournament reached finalization.
type FinishReason string

const (
	FinishManual FinishReason = "manual"
	FinishAuto   FinishReason = "auto"
)

// ArchivedTournament is the stored summary of a finished tournament.
type ArchivedTournament struct {
	ID           string       `json:"id" db:"id"`
	ChatID       int64        `json:"chat_id" db:"chat_id"`
	Teams        []TeamKey    `json:"teams" db:"teams"`
	RoundsPlayed int          `json:"rounds_played" db:"rounds_played"`
	Reason       FinishReason `json:"reason" db:"reason"`
	ReportURL    *string      `json:"report_url,omitempty" db:"report_url"`
	StartedAt    time.Time    `json:"started_at" db:"started_at"`
	FinishedAt   time.Time    `json:"finished_at" db:"finished_at"`

	Standings []Standing    `json:"standings,omitempty" db:"-"`
	Matches   []MatchResult `json:"matches,omitempty" db:"-"`
}
