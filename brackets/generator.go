package brackets

import (
	"errors"

	"github.com/Dosada05/league-bot/models"
)

var (
	ErrInsufficientTeams = errors.New("not enough teams to build a schedule (minimum 2)")
	ErrDuplicateTeam     = errors.New("team appears more than once in the selection")
	ErrIndexOutOfRange   = errors.New("match index is out of range")
	ErrScheduleFixed     = errors.New("fixture order is already fixed for this tournament")
	ErrScheduleNotFixed  = errors.New("first round fixtures must be picked manually")
)

type GenerateBracketParams struct {
	// Teams in selection order.
	Teams []models.TeamKey
}

type BracketGenerator interface {
	GenerateBracket(params GenerateBracketParams) ([]models.Match, error)

	GetName() string
}
