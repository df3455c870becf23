// Package client is the browser-side orchestrator. It loads matches from the
// local fallback snapshot before going to the network, keeps standings in a
// stale-while-revalidate cache, and produces the data each page renders.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/KaueAmbrosio/WebSiteEsporte/cache"
	"github.com/KaueAmbrosio/WebSiteEsporte/fallback"
	"github.com/KaueAmbrosio/WebSiteEsporte/scores"
	"github.com/KaueAmbrosio/WebSiteEsporte/storage"
)

const (
	// StandingsKey is the storage key of the cached standings.
	StandingsKey = "standings_cache"
	// UpcomingCount is the number of upcoming matches on the home page.
	UpcomingCount = 4
	// PreviewRows is the number of standings rows on the home page.
	PreviewRows = 5
)

// Source is the upstream the app loads data from.
type Source interface {
	FetchMatches(ctx context.Context) ([]scores.MatchRecord, error)
	FetchStandings(ctx context.Context) ([]scores.StandingsRow, error)
}

type Config struct {
	// Freshness window of cached standings. cache.DefaultTTL is used if zero.
	TTL time.Duration
	// Clock for the standings cache. time.Now if nil.
	Now func() time.Time
	// Logger to use. The global zerolog logger is used if nil.
	Logger *zerolog.Logger
}

type App struct {
	source    Source
	standings *cache.Cache[[]scores.StandingsRow]
	fallback  *fallback.Store
	log       zerolog.Logger
}

// New creates an app whose local state lives in store.
func New(source Source, store storage.Provider, config Config) *App {
	var logger zerolog.Logger
	if config.Logger == nil {
		logger = log.Logger
	} else {
		logger = *config.Logger
	}
	return &App{
		source: source,
		standings: cache.New[[]scores.StandingsRow](store, cache.Config{
			TTL:    config.TTL,
			Now:    config.Now,
			Logger: &logger,
		}),
		fallback: fallback.New(store, &logger),
		log:      logger.With().Str("component", "client").Logger(),
	}
}

// LoadMatches returns the local snapshot if there is one. Otherwise it
// fetches the matches, saves them as the snapshot and returns them.
func (a *App) LoadMatches(ctx context.Context) ([]scores.MatchRecord, error) {
	if matches, ok := a.fallback.Load(); ok {
		a.log.Trace().Int("matches", len(matches)).Msg("Using local snapshot")
		return matches, nil
	}
	matches, err := a.source.FetchMatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}
	if err := a.fallback.Save(matches); err != nil {
		// the fetched data is still good for this page view
		a.log.Error().Err(err).Msg("Could not save local snapshot")
	}
	return matches, nil
}

// Standings returns at most limit standings rows, or all of them if limit
// is not positive. A stale table is returned as is and refreshed in the
// background.
func (a *App) Standings(ctx context.Context, limit int) ([]scores.StandingsRow, error) {
	rows, status, err := a.standings.GetOrRefresh(ctx, StandingsKey, a.source.FetchStandings)
	if err != nil {
		return nil, fmt.Errorf("load standings: %w", err)
	}
	a.log.Trace().Str("cache", string(status)).Msg("Loaded standings")
	return scores.TopStandings(rows, limit), nil
}

// Wait blocks until background standings refreshes have finished.
func (a *App) Wait() {
	a.standings.Wait()
}

// ErrorPanel is the message shown in place of a page that failed to load.
func ErrorPanel(err error) string {
	return "Erro ao carregar dados: " + err.Error()
}
