// Package server serves the matches and standings APIs from a cache in
// front of the rate-limited upstream, and pushes refreshed match lists to
// websocket subscribers.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/KaueAmbrosio/WebSiteEsporte/cache"
	"github.com/KaueAmbrosio/WebSiteEsporte/scores"
	"github.com/KaueAmbrosio/WebSiteEsporte/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	matchesKey   = "matches"
	standingsKey = "standings"
)

// Source is the upstream the server fetches from.
type Source interface {
	FetchMatches(ctx context.Context) ([]scores.MatchRecord, error)
	FetchStandings(ctx context.Context) ([]scores.StandingsRow, error)
}

type Config struct {
	// Upstream to fetch from.
	Source Source
	// Storage for cached responses. In-memory storage is used if nil.
	Storage storage.Provider
	// Freshness window. cache.DefaultTTL is used if zero.
	TTL time.Duration
	// Directory of the static site. No static files are served if empty.
	StaticDir string
	// Clock for the caches. time.Now if nil.
	Now func() time.Time
	// Logger to use. The global zerolog logger is used if nil.
	Logger *zerolog.Logger
}

type Server struct {
	source     Source
	matches    *cache.Cache[[]scores.MatchRecord]
	standings  *cache.Cache[[]scores.StandingsRow]
	hub        *Hub
	handler    http.Handler
	httpServer *http.Server
	log        zerolog.Logger
}

// New creates a server and starts its websocket hub.
func New(config Config) *Server {
	var logger zerolog.Logger
	if config.Logger == nil {
		logger = log.Logger
	} else {
		logger = *config.Logger
	}
	store := config.Storage
	if store == nil {
		store = storage.NewMemStorage()
	}
	cacheConfig := cache.Config{TTL: config.TTL, Now: config.Now, Logger: &logger}

	s := &Server{
		source:    config.Source,
		matches:   cache.New[[]scores.MatchRecord](store, cacheConfig),
		standings: cache.New[[]scores.StandingsRow](store, cacheConfig),
		hub:       NewHub(&logger),
		log:       logger.With().Str("component", "server").Logger(),
	}
	s.matches.OnUpdate(func(key string, matches []scores.MatchRecord) {
		s.hub.Broadcast(Message{Type: "matches", Data: matches})
	})
	s.handler = s.routes(logger, config.StaticDir)

	go s.hub.Run()
	return s
}

func (s *Server) routes(logger zerolog.Logger, staticDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(hlog.NewHandler(logger))
	r.Use(hlog.RemoteAddrHandler("ip"))
	r.Use(hlog.RequestIDHandler("req_id", "Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Sent response to client")
	}))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/matches", s.handleMatches)
		r.Get("/matches/ws", s.handleWebSocket)
		r.Get("/standings", s.handleStandings)
	})
	if staticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(staticDir)))
	}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Start listens on addr and blocks until the server is stopped.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.log.Info().Str("addr", addr).Msg("Listening")
	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts down the HTTP server and the websocket hub and waits for
// background cache refreshes to finish.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	s.hub.Stop()
	s.matches.Wait()
	s.standings.Wait()
	return err
}
