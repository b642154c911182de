package models

import "time"

// Match is a fixture. Home/Away order is fixed when the schedule is generated and the
// pair itself is the identity, so Match is usable as a map key.
type Match struct {
	Home TeamKey `json:"home"`
	Away TeamKey `json:"away"`
}

// RoundScore is one replay of a match inside a given round.
type RoundScore struct {
	Round     int `json:"round"`
	HomeScore int `json:"home_score"`
	AwayScore int `json:"away_score"`
}

// MatchResult is an entry of the chronological match log.
type MatchResult struct {
	Round     int       `json:"round"`
	Home      TeamKey   `json:"home"`
	Away      TeamKey   `json:"away"`
	HomeScore int       `json:"home_score"`
	AwayScore int       `json:"away_score"`
	PlayedAt  time.Time `json:"played_at"`
}

func (r MatchResult) Match() Match {
	return Match{Home: r.Home, Away: r.Away}
}
