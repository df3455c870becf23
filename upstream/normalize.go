package upstream

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/KaueAmbrosio/WebSiteEsporte/scores"
)

type eventsEnvelope struct {
	Events []event `json:"events"`
}

type event struct {
	ID        flexString `json:"idEvent"`
	HomeTeam  string     `json:"strHomeTeam"`
	AwayTeam  string     `json:"strAwayTeam"`
	HomeScore flexInt    `json:"intHomeScore"`
	AwayScore flexInt    `json:"intAwayScore"`
	Status    string     `json:"strStatus"`
	DateEvent string     `json:"dateEvent"`
	Time      string     `json:"strTime"`
	Venue     string     `json:"strVenue"`
	Referee   string     `json:"strReferee"`
}

type tableEnvelope struct {
	Table []tableRow `json:"table"`
}

type tableRow struct {
	Rank           flexInt `json:"intRank"`
	Team           string  `json:"strTeam"`
	Points         flexInt `json:"intPoints"`
	Played         flexInt `json:"intPlayed"`
	Win            flexInt `json:"intWin"`
	Draw           flexInt `json:"intDraw"`
	Loss           flexInt `json:"intLoss"`
	GoalDifference flexInt `json:"intGoalDifference"`
}

func (e eventsEnvelope) records() []scores.MatchRecord {
	out := make([]scores.MatchRecord, 0, len(e.Events))
	for _, ev := range e.Events {
		out = append(out, ev.record())
	}
	return out
}

func (ev event) record() scores.MatchRecord {
	return scores.MatchRecord{
		ID:        string(ev.ID),
		HomeTeam:  strings.TrimSpace(ev.HomeTeam),
		AwayTeam:  strings.TrimSpace(ev.AwayTeam),
		HomeScore: ev.HomeScore.score(),
		AwayScore: ev.AwayScore.score(),
		Status:    strings.TrimSpace(ev.Status),
		Date:      joinDate(ev.DateEvent, ev.Time),
		Stadium:   strings.TrimSpace(ev.Venue),
		Referee:   strings.TrimSpace(ev.Referee),
		Events:    []string{},
	}
}

func (e tableEnvelope) rows() []scores.StandingsRow {
	out := make([]scores.StandingsRow, 0, len(e.Table))
	for _, r := range e.Table {
		out = append(out, scores.StandingsRow{
			Rank:           r.Rank.value(),
			Team:           strings.TrimSpace(r.Team),
			Points:         r.Points.value(),
			Played:         r.Played.value(),
			Win:            r.Win.value(),
			Draw:           r.Draw.value(),
			Loss:           r.Loss.value(),
			GoalDifference: r.GoalDifference.value(),
		})
	}
	return out
}

// joinDate combines the provider's separate date and time fields into one
// ISO-8601 string. The time is dropped if the date is missing.
func joinDate(date, clock string) string {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" {
		return ""
	}
	if clock == "" {
		return date
	}
	return date + "T" + clock
}

// flexInt decodes integers the provider sends as numbers, numeric strings,
// empty strings or null. Anything that is not an integer is absent.
type flexInt struct {
	n     int
	valid bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	*f = flexInt{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		s = strings.TrimSpace(unquoted)
	}
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*f = flexInt{n: n, valid: true}
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && v == math.Trunc(v) && math.Abs(v) < math.MaxInt32 {
		*f = flexInt{n: int(v), valid: true}
	}
	return nil
}

// score returns the value as an optional, non-negative score.
func (f flexInt) score() *int {
	if !f.valid || f.n < 0 {
		return nil
	}
	return scores.Score(f.n)
}

func (f flexInt) value() int {
	if !f.valid {
		return 0
	}
	return f.n
}

// flexString accepts both strings and numbers.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	*f = flexString(b)
	return nil
}
