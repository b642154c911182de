package models

// Standing is one row of the standings table.
type Standing struct {
	Team     TeamKey `json:"team"`
	Seed     int     `json:"seed"` // position in selection order, final tie-break
	Points   int     `json:"points"`
	Games    int     `json:"games"`
	Wins     int     `json:"wins"`
	Draws    int     `json:"draws"`
	Losses   int     `json:"losses"`
	Scored   int     `json:"scored"`
	Conceded int     `json:"conceded"`
}

func (s Standing) GoalDifference() int {
	return s.Scored - s.Conceded
}
