package services

import "errors"

// Ошибки уровня сценария турнира.
var (
	ErrSessionNotFound    = errors.New("no tournament is running in this chat")
	ErrInvalidState       = errors.New("event is not allowed in the current tournament state")
	ErrInvalidScoreFormat = errors.New("score must look like X:Y with non-negative integers")
	ErrUnknownTeam        = errors.New("team is not in the catalog")
	ErrAlreadyFinished    = errors.New("tournament is already finished")
	ErrNoCurrentMatch     = errors.New("no match is waiting for a score")

	ErrArchiveDisabled = errors.New("results archive is not configured")
	ErrNotFound        = errors.New("requested resource not found")
)
