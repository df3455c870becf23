package client

import (
	"context"
	"fmt"

	"github.com/KaueAmbrosio/WebSiteEsporte/scores"
)

type HomePage struct {
	Live      *scores.MatchRecord   `json:"live,omitempty"`
	Upcoming  []scores.MatchRecord  `json:"upcoming"`
	Standings []scores.StandingsRow `json:"standings"`
}

// Home returns the live match, the next matches and a standings preview.
// The page still renders if only the standings fail.
func (a *App) Home(ctx context.Context) (HomePage, error) {
	matches, err := a.LoadMatches(ctx)
	if err != nil {
		return HomePage{}, err
	}
	page := HomePage{
		Upcoming:  scores.Upcoming(matches, UpcomingCount),
		Standings: []scores.StandingsRow{},
	}
	if live, ok := scores.LiveMatch(matches); ok {
		page.Live = &live
	}
	if rows, err := a.Standings(ctx, PreviewRows); err != nil {
		a.log.Warn().Err(err).Msg("Could not load standings preview")
	} else {
		page.Standings = rows
	}
	return page, nil
}

func (a *App) MatchList(ctx context.Context) ([]scores.Day, error) {
	matches, err := a.LoadMatches(ctx)
	if err != nil {
		return nil, err
	}
	return scores.GroupByDay(matches), nil
}

func (a *App) MatchDetail(ctx context.Context, id string) (scores.MatchRecord, error) {
	matches, err := a.LoadMatches(ctx)
	if err != nil {
		return scores.MatchRecord{}, err
	}
	m, err := scores.Find(matches, id)
	if err != nil {
		return scores.MatchRecord{}, err
	}
	return *m, nil
}

func (a *App) StandingsTable(ctx context.Context) ([]scores.StandingsRow, error) {
	return a.Standings(ctx, 0)
}

func (a *App) Teams(ctx context.Context) ([]string, error) {
	rows, err := a.Standings(ctx, 0)
	if err != nil {
		return nil, err
	}
	return scores.Teams(rows), nil
}

// AdminUpdateScore sets the score and status of a match and saves the
// result as the local snapshot.
func (a *App) AdminUpdateScore(ctx context.Context, id string, home, away int, status string) error {
	return a.edit(ctx, func(matches []scores.MatchRecord) error {
		return scores.UpdateScore(matches, id, home, away, status)
	})
}

// AdminAddEvent appends a line to a match's commentary and saves the
// result as the local snapshot.
func (a *App) AdminAddEvent(ctx context.Context, id, text string) error {
	return a.edit(ctx, func(matches []scores.MatchRecord) error {
		return scores.AppendEvent(matches, id, text)
	})
}

func (a *App) edit(ctx context.Context, apply func([]scores.MatchRecord) error) error {
	matches, err := a.LoadMatches(ctx)
	if err != nil {
		return err
	}
	matches = scores.Clone(matches)
	if err := apply(matches); err != nil {
		return err
	}
	if err := a.fallback.Save(matches); err != nil {
		return fmt.Errorf("save edit: %w", err)
	}
	return nil
}
