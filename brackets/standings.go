package brackets

import (
	"sort"

	"github.com/Dosada05/league-bot/models"
)

const (
	pointsWin  = 3
	pointsDraw = 1
)

// ComputeStandings builds the table from the chronological match log.
//
// Rows are ordered by points, then goal difference, then goals scored, all
// descending. Rows equal on all three keep the order in which the teams were
// selected (Standing.Seed).
func ComputeStandings(teams []models.Team, log []models.MatchResult) []models.Standing {
	table, index := newTable(teams)
	for _, r := range log {
		tally(table, index, r.Home, r.Away, r.HomeScore, r.AwayScore)
	}
	rank(table)
	return table
}

// ComputeFinalStandings is the end-of-tournament view, built from the per-match
// results rather than the log. The totals and ordering are the same as
// ComputeStandings for the same games.
func ComputeFinalStandings(teams []models.Team, results map[models.Match][]models.RoundScore) []models.Standing {
	table, index := newTable(teams)
	for match, scores := range results {
		for _, s := range scores {
			tally(table, index, match.Home, match.Away, s.HomeScore, s.AwayScore)
		}
	}
	rank(table)
	return table
}

func newTable(teams []models.Team) ([]models.Standing, map[models.TeamKey]int) {
	table := make([]models.Standing, len(teams))
	index := make(map[models.TeamKey]int, len(teams))
	for i, t := range teams {
		table[i] = models.Standing{Team: t.Key, Seed: i}
		index[t.Key] = i
	}
	return table, index
}

func tally(table []models.Standing, index map[models.TeamKey]int, home, away models.TeamKey, x, y int) {
	hi, okHome := index[home]
	ai, okAway := index[away]
	if !okHome || !okAway {
		return
	}
	h, a := &table[hi], &table[ai]

	h.Games++
	a.Games++
	h.Scored += x
	h.Conceded += y
	a.Scored += y
	a.Conceded += x

	switch {
	case x > y:
		h.Points += pointsWin
		h.Wins++
		a.Losses++
	case y > x:
		a.Points += pointsWin
		a.Wins++
		h.Losses++
	default:
		h.Points += pointsDraw
		a.Points += pointsDraw
		h.Draws++
		a.Draws++
	}
}

func rank(table []models.Standing) {
	sort.SliceStable(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference() != b.GoalDifference() {
			return a.GoalDifference() > b.GoalDifference()
		}
		if a.Scored != b.Scored {
			return a.Scored > b.Scored
		}
		return a.Seed < b.Seed
	})
}
