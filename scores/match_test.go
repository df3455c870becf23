package scores

import (
	"errors"
	"testing"
)

func testMatches() []MatchRecord {
	return []MatchRecord{
		{ID: "1", HomeTeam: "Arsenal", AwayTeam: "Chelsea", Status: "Scheduled", Date: "2024-08-20T15:00:00"},
		{ID: "2", HomeTeam: "Everton", AwayTeam: "Fulham", Status: "", Date: "2024-08-18T12:30:00"},
		{ID: "3", HomeTeam: "Leeds", AwayTeam: "Spurs", Status: "Match Finished", Date: "2024-08-17", HomeScore: Score(0), AwayScore: Score(2)},
		{ID: "4", HomeTeam: "Wolves", AwayTeam: "Brentford", Status: "Agendado", Date: "not a date"},
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"2024-08-17T15:00:00Z", true},
		{"2024-08-17T15:00:00+01:00", true},
		{"2024-08-17T15:00:00", true},
		{"2024-08-17 15:00:00", true},
		{"2024-08-17", true},
		{"", false},
		{"   ", false},
		{"17/08/2024", false},
		{"{not a date", false},
	}
	for _, tt := range tests {
		if _, ok := ParseDate(tt.in); ok != tt.ok {
			t.Errorf("ParseDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
	}
}

func TestFind(t *testing.T) {
	matches := testMatches()
	m, err := Find(matches, "3")
	if err != nil {
		t.Fatal(err)
	}
	if m.HomeTeam != "Leeds" {
		t.Fatalf("found %s", m.HomeTeam)
	}

	_, err = Find(matches, "99")
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.ID != "99" {
		t.Fatalf("want NotFoundError for 99, got %v", err)
	}

	if _, err := Find(matches, ""); !errors.Is(err, ErrMissingID) {
		t.Fatalf("want ErrMissingID, got %v", err)
	}
}

func TestUpdateScore(t *testing.T) {
	matches := testMatches()
	if err := UpdateScore(matches, "1", 2, 0, "Live"); err != nil {
		t.Fatal(err)
	}
	m := matches[0]
	if *m.HomeScore != 2 || *m.AwayScore != 0 || m.Status != "Live" {
		t.Fatalf("match not updated: %+v", m)
	}
	if err := UpdateScore(matches, "1", -1, 0, "Live"); !errors.Is(err, ErrInvalidScore) {
		t.Fatalf("want ErrInvalidScore, got %v", err)
	}
}

func TestAppendEvent(t *testing.T) {
	matches := testMatches()
	if err := AppendEvent(matches, "2", "12' Goal Everton"); err != nil {
		t.Fatal(err)
	}
	if err := AppendEvent(matches, "2", "  "); !errors.Is(err, ErrEmptyEvent) {
		t.Fatalf("want ErrEmptyEvent, got %v", err)
	}
	if len(matches[1].Events) != 1 || matches[1].Events[0] != "12' Goal Everton" {
		t.Fatalf("events are %v", matches[1].Events)
	}
}

func TestLiveMatch(t *testing.T) {
	matches := testMatches()
	// no live match: falls back to the first one with a score
	if m, ok := LiveMatch(matches); !ok || m.ID != "3" {
		t.Fatalf("got %+v, %v", m, ok)
	}
	matches[3].Status = "2H"
	if m, ok := LiveMatch(matches); !ok || m.ID != "4" {
		t.Fatalf("got %+v, %v", m, ok)
	}
	if _, ok := LiveMatch(nil); ok {
		t.Fatal("live match found in empty list")
	}
}

func TestUpcoming(t *testing.T) {
	up := Upcoming(testMatches(), 4)
	ids := make([]string, 0, len(up))
	for _, m := range up {
		ids = append(ids, m.ID)
	}
	want := []string{"2", "1", "4"}
	if len(ids) != len(want) {
		t.Fatalf("got %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("got %v, want %v", ids, want)
		}
	}
	if n := len(Upcoming(testMatches(), 1)); n != 1 {
		t.Fatalf("limit not applied, got %d", n)
	}
}

func TestGroupByDay(t *testing.T) {
	days := GroupByDay(testMatches())
	if len(days) != 4 {
		t.Fatalf("got %d days", len(days))
	}
	if days[0].Date != "2024-08-20" || days[3].Date != "" {
		t.Fatalf("days are %+v", days)
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	orig := testMatches()
	orig[0].Events = []string{"kick-off"}
	cl := Clone(orig)
	*cl[2].HomeScore = 5
	cl[0].Events[0] = "changed"
	if *orig[2].HomeScore != 0 || orig[0].Events[0] != "kick-off" {
		t.Fatal("clone shares memory with original")
	}
}

func TestTopStandings(t *testing.T) {
	rows := []StandingsRow{{Rank: 1, Team: "A"}, {Rank: 2, Team: "B"}, {Rank: 3, Team: "C"}}
	if got := TopStandings(rows, 2); len(got) != 2 || got[1].Team != "B" {
		t.Fatalf("got %+v", got)
	}
	if got := TopStandings(rows, 0); len(got) != 3 {
		t.Fatalf("unbounded got %d rows", len(got))
	}
	if got := TopStandings(rows, 10); len(got) != 3 {
		t.Fatalf("over-long limit got %d rows", len(got))
	}
	top := TopStandings(rows, 1)
	top[0].Team = "X"
	if rows[0].Team != "A" {
		t.Fatal("TopStandings mutated input")
	}
	if teams := Teams(rows); len(teams) != 3 || teams[2] != "C" {
		t.Fatalf("teams are %v", teams)
	}
}
