package brackets

import (
	"fmt"

	"github.com/Dosada05/league-bot/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

func (g *RoundRobinGenerator) GenerateBracket(params GenerateBracketParams) ([]models.Match, error) {
	return GenerateRoundRobin(params.Teams)
}

// GenerateRoundRobin returns every unordered pair of teams exactly once. Pairs are
// enumerated as (teams[i], teams[j]) for i < j, so the first team of a pair is always
// the one selected earlier.
func GenerateRoundRobin(teams []models.TeamKey) ([]models.Match, error) {
	n := len(teams)
	if n < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrInsufficientTeams, n)
	}

	seen := make(map[models.TeamKey]struct{}, n)
	for _, t := range teams {
		if _, ok := seen[t]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTeam, t)
		}
		seen[t] = struct{}{}
	}

	matches := make([]models.Match, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			matches = append(matches, models.Match{Home: teams[i], Away: teams[j]})
		}
	}
	return matches, nil
}
