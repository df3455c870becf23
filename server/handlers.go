package server

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/KaueAmbrosio/WebSiteEsporte/cache"
	cachestatus "github.com/KaueAmbrosio/WebSiteEsporte/pkg/cache-status"
	"github.com/KaueAmbrosio/WebSiteEsporte/scores"
)

// errorMessage is the body of a 500 when nothing can be served.
const errorMessage = "falha ao buscar dados"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	matches, ok := serveCached(w, r, s.matches, matchesKey, s.source.FetchMatches)
	if ok {
		writeJSON(w, r, http.StatusOK, matches)
	}
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	rows, ok := serveCached(w, r, s.standings, standingsKey, s.source.FetchStandings)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	writeJSON(w, r, http.StatusOK, scores.TopStandings(rows, limit))
}

// serveCached reads key through the cache, refreshing it if it is stale,
// and sets the Cache-Status header. If nothing can be served it writes the
// error response and returns false.
func serveCached[T any](w http.ResponseWriter, r *http.Request, c *cache.Cache[T], key string, fetch cache.Fetcher[T]) (T, bool) {
	logger := getLogger(r)
	value, status, err := c.GetOrFetch(r.Context(), key, fetch)
	if err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Could not fetch from upstream")
		cs := cachestatus.CacheStatus{}
		cs.Forward(cachestatus.FwdUriMiss)
		cs.Detail("error")
		w.Header().Add("Cache-Status", cs.String())
		writeJSON(w, r, http.StatusInternalServerError, map[string]string{"error": errorMessage})
		return value, false
	}
	cs := cachestatus.FromCache(status)
	w.Header().Add("Cache-Status", cs.String())
	logger.Trace().
		Str("key", key).
		Str("cache", string(status)).
		Str("fwd", string(cs.FwdReason())).
		Bool("hit", cs.IsHit()).
		Msg("Serving cached content")
	return value, true
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		getLogger(r).Error().Err(err).Msg("Could not encode response")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		getLogger(r).Error().Err(err).Msg("Could not write response body to client")
	}
}

// getLogger returns the logger from the request context.
// If no logger is found, it will return the default logger.
func getLogger(r *http.Request) *zerolog.Logger {
	logger := hlog.FromRequest(r)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &log.Logger
	}
	return logger
}

// handleWebSocket subscribes the client to refreshed match lists. The
// currently cached list, if any, is sent first.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	var initial *Message
	if e, ok := s.matches.Get(matchesKey); ok {
		initial = &Message{Type: "matches", Data: e.Value}
	}
	if err := s.hub.Serve(w, r, initial); err != nil {
		getLogger(r).Warn().Err(err).Msg("Websocket upgrade failed")
	}
}
