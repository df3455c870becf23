package scores

// StandingsRow is one team's row in a league table, in the order supplied by
// the provider.
type StandingsRow struct {
	Rank           int    `json:"rank"`
	Team           string `json:"team"`
	Points         int    `json:"points"`
	Played         int    `json:"played"`
	Win            int    `json:"win"`
	Draw           int    `json:"draw"`
	Loss           int    `json:"loss"`
	GoalDifference int    `json:"goalDifference"`
}

// TopStandings returns a copy of the first n rows; n <= 0 returns all rows.
func TopStandings(rows []StandingsRow, n int) []StandingsRow {
	if n <= 0 || n > len(rows) {
		n = len(rows)
	}
	out := make([]StandingsRow, n)
	copy(out, rows[:n])
	return out
}

// Teams lists the team names of a table in table order.
func Teams(rows []StandingsRow) []string {
	teams := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Team != "" {
			teams = append(teams, r.Team)
		}
	}
	return teams
}
