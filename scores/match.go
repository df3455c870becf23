package scores

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrMissingID    = errors.New("match id not given")
	ErrInvalidScore = errors.New("score must not be negative")
	ErrEmptyEvent   = errors.New("event text is empty")
)

// MatchRecord is one normalized fixture.
// Records are replaced wholesale between fetches; ID is the only field
// that identifies a match across refreshes.
type MatchRecord struct {
	ID        string   `json:"id"`
	HomeTeam  string   `json:"homeTeam"`
	AwayTeam  string   `json:"awayTeam"`
	HomeScore *int     `json:"homeScore"`
	AwayScore *int     `json:"awayScore"`
	Status    string   `json:"status"`
	Date      string   `json:"date"`
	Stadium   string   `json:"stadium,omitempty"`
	Referee   string   `json:"referee,omitempty"`
	Events    []string `json:"events"`
}

// HasScore reports whether both scores are known.
func (m MatchRecord) HasScore() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}

// Time returns the parsed kick-off time, if the date is usable.
func (m MatchRecord) Time() (time.Time, bool) {
	return ParseDate(m.Date)
}

// NotFoundError is returned when no record has the requested id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("match with id %q not found", e.ID)
}

// Score is a helper for building optional scores.
func Score(n int) *int {
	return &n
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses the loosely ISO-8601 dates found in match data.
// Empty or malformed input yields false.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Find returns the record with the given id.
// The returned pointer aliases the slice element, so admin edits through it
// are visible to the caller's slice.
func Find(matches []MatchRecord, id string) (*MatchRecord, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	for i := range matches {
		if matches[i].ID == id {
			return &matches[i], nil
		}
	}
	return nil, &NotFoundError{ID: id}
}

// UpdateScore sets both scores and the status of a match.
func UpdateScore(matches []MatchRecord, id string, home, away int, status string) error {
	if home < 0 || away < 0 {
		return ErrInvalidScore
	}
	m, err := Find(matches, id)
	if err != nil {
		return err
	}
	m.HomeScore = Score(home)
	m.AwayScore = Score(away)
	m.Status = status
	return nil
}

// AppendEvent adds a line to the commentary log of a match.
func AppendEvent(matches []MatchRecord, id, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyEvent
	}
	m, err := Find(matches, id)
	if err != nil {
		return err
	}
	m.Events = append(m.Events, text)
	return nil
}

// LiveMatch picks the match to feature on the home page: the first one that
// is live, or failing that the first one with both scores known.
func LiveMatch(matches []MatchRecord) (MatchRecord, bool) {
	for _, m := range matches {
		if Classify(m.Status) == Live {
			return m, true
		}
	}
	for _, m := range matches {
		if m.HasScore() {
			return m, true
		}
	}
	return MatchRecord{}, false
}

// Upcoming returns up to n scheduled matches ordered by kick-off.
// Matches without a usable date sort last.
func Upcoming(matches []MatchRecord, n int) []MatchRecord {
	out := make([]MatchRecord, 0, len(matches))
	for _, m := range matches {
		if Classify(m.Status) == Scheduled {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, iok := out[i].Time()
		tj, jok := out[j].Time()
		if iok != jok {
			return iok
		}
		return iok && ti.Before(tj)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Day is a group of matches played on the same calendar day.
// Date is empty for matches without a usable date.
type Day struct {
	Date    string        `json:"date"`
	Matches []MatchRecord `json:"matches"`
}

// GroupByDay groups matches by calendar day in first-seen order.
func GroupByDay(matches []MatchRecord) []Day {
	days := make([]Day, 0)
	index := make(map[string]int)
	for _, m := range matches {
		var key string
		if t, ok := m.Time(); ok {
			key = t.Format("2006-01-02")
		}
		i, ok := index[key]
		if !ok {
			i = len(days)
			index[key] = i
			days = append(days, Day{Date: key})
		}
		days[i].Matches = append(days[i].Matches, m)
	}
	return days
}

// Clone returns a deep copy of the records, so that edits do not leak into
// shared cached slices.
func Clone(matches []MatchRecord) []MatchRecord {
	if matches == nil {
		return nil
	}
	out := make([]MatchRecord, len(matches))
	for i, m := range matches {
		if m.HomeScore != nil {
			m.HomeScore = Score(*m.HomeScore)
		}
		if m.AwayScore != nil {
			m.AwayScore = Score(*m.AwayScore)
		}
		if m.Events != nil {
			m.Events = append([]string(nil), m.Events...)
		}
		out[i] = m
	}
	return out
}
