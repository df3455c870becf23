package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

const eventsBody = `{"events":[
  {"idEvent":"2069983","strHomeTeam":"Manchester United","strAwayTeam":"Fulham",
   "intHomeScore":"1","intAwayScore":"0","strStatus":"Match Finished",
   "dateEvent":"2024-08-16","strTime":"19:00:00","strVenue":"Old Trafford","strReferee":"Robert Jones"},
  {"idEvent":2069984,"strHomeTeam":"Ipswich","strAwayTeam":"Liverpool",
   "intHomeScore":"","intAwayScore":null,"strStatus":"Not Started",
   "dateEvent":"2024-08-17","strTime":"11:30:00","strVenue":"Portman Road"},
  {"idEvent":"2069985","strHomeTeam":"Arsenal","strAwayTeam":"Wolves",
   "intHomeScore":2,"intAwayScore":"-1","strStatus":"1H","dateEvent":"","strTime":"14:00:00"}
]}`

const tableBody = `{"table":[
  {"intRank":"1","strTeam":"Liverpool","intPoints":"84","intPlayed":"38","intWin":"25","intDraw":"9","intLoss":"4","intGoalDifference":"45"},
  {"intRank":2,"strTeam":"Arsenal","intPoints":74,"intPlayed":38,"intWin":20,"intDraw":14,"intLoss":4,"intGoalDifference":"35"}
]}`

// provider fakes the sports data API under /{key}/...
func provider(t *testing.T, events, table string, status int) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/{key}/eventsnextleague.php", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "key") != "testkey" {
			t.Errorf("unexpected key %q", chi.URLParam(r, "key"))
		}
		if id := r.URL.Query().Get("id"); id != "4328" {
			t.Errorf("unexpected league id %q", id)
		}
		if accept := r.Header.Get("Accept"); accept != "application/json" {
			t.Errorf("unexpected Accept header %q", accept)
		}
		w.WriteHeader(status)
		w.Write([]byte(events))
	})
	r.Get("/{key}/lookuptable.php", func(w http.ResponseWriter, r *http.Request) {
		if l, s := r.URL.Query().Get("l"), r.URL.Query().Get("s"); l != "4328" || s != "2024-2025" {
			t.Errorf("unexpected table query l=%q s=%q", l, s)
		}
		w.WriteHeader(status)
		w.Write([]byte(table))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func testClient(url string) *Client {
	return NewClient(Config{BaseURL: url + "/", APIKey: "testkey", LeagueID: "4328", Season: "2024-2025"})
}

func TestFetchMatches(t *testing.T) {
	srv := provider(t, eventsBody, tableBody, http.StatusOK)
	matches, err := testClient(srv.URL).FetchMatches(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 3 {
		t.Fatalf("got %d matches", len(matches))
	}

	m := matches[0]
	if m.ID != "2069983" || m.HomeTeam != "Manchester United" || m.AwayTeam != "Fulham" {
		t.Errorf("bad identity: %+v", m)
	}
	if m.HomeScore == nil || *m.HomeScore != 1 || m.AwayScore == nil || *m.AwayScore != 0 {
		t.Errorf("bad score: %v %v", m.HomeScore, m.AwayScore)
	}
	if m.Date != "2024-08-16T19:00:00" {
		t.Errorf("bad date %q", m.Date)
	}
	if m.Stadium != "Old Trafford" || m.Referee != "Robert Jones" {
		t.Errorf("bad venue/referee: %q %q", m.Stadium, m.Referee)
	}
	if m.Events == nil || len(m.Events) != 0 {
		t.Errorf("events should be empty and non-nil, got %#v", m.Events)
	}

	if m := matches[1]; m.ID != "2069984" || m.HomeScore != nil || m.AwayScore != nil {
		t.Errorf("empty and null scores should be absent: %+v", m)
	}
	if m := matches[2]; m.Date != "" || m.HomeScore == nil || *m.HomeScore != 2 || m.AwayScore != nil {
		t.Errorf("numeric/negative score or missing date mishandled: %+v", m)
	}
}

func TestFetchMatchesNullEvents(t *testing.T) {
	srv := provider(t, `{"events":null}`, "", http.StatusOK)
	matches, err := testClient(srv.URL).FetchMatches(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if matches == nil || len(matches) != 0 {
		t.Fatalf("want empty list, got %#v", matches)
	}
}

func TestFetchStandings(t *testing.T) {
	srv := provider(t, eventsBody, tableBody, http.StatusOK)
	rows, err := testClient(srv.URL).FetchStandings(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	if r := rows[0]; r.Rank != 1 || r.Team != "Liverpool" || r.Points != 84 || r.Played != 38 || r.GoalDifference != 45 {
		t.Errorf("bad first row %+v", r)
	}
	if r := rows[1]; r.Rank != 2 || r.Win != 20 || r.Draw != 14 || r.Loss != 4 || r.GoalDifference != 35 {
		t.Errorf("bad second row %+v", r)
	}
}

func TestUpstreamFailures(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   int
	}{
		{"server error", `{"error":"down"}`, http.StatusInternalServerError, http.StatusInternalServerError},
		{"rate limited", "slow down", http.StatusTooManyRequests, http.StatusTooManyRequests},
		{"truncated JSON", `{"events":[{"idEvent":"1"`, http.StatusOK, 0},
		{"not JSON", "<html>maintenance</html>", http.StatusOK, 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			srv := provider(t, test.body, test.body, test.status)
			matches, err := testClient(srv.URL).FetchMatches(context.Background())
			var upErr *UpstreamError
			if !errors.As(err, &upErr) {
				t.Fatalf("want *UpstreamError, got %v", err)
			}
			if upErr.StatusCode != test.code {
				t.Errorf("status %d, want %d", upErr.StatusCode, test.code)
			}
			if matches != nil {
				t.Errorf("partial result returned: %+v", matches)
			}
		})
	}
}

func TestUpstreamTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.FetchStandings(context.Background())
	var upErr *UpstreamError
	if !errors.As(err, &upErr) || upErr.Err == nil {
		t.Fatalf("want transport *UpstreamError, got %v", err)
	}
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(Config{BaseURL: url}).FetchMatches(context.Background())
	var upErr *UpstreamError
	if !errors.As(err, &upErr) || upErr.StatusCode != 0 {
		t.Fatalf("want transport *UpstreamError, got %v", err)
	}
}
