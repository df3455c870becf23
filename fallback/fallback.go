// Package fallback keeps the last known good set of matches in durable
// storage. The snapshot has no expiry: once present it is served in
// preference to the network, and admin edits are written straight to it.
package fallback

import (
	"errors"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/KaueAmbrosio/WebSiteEsporte/scores"
	"github.com/KaueAmbrosio/WebSiteEsporte/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Key is the storage key of the snapshot.
const Key = "matches_fallback"

var errNullSnapshot = errors.New("snapshot is null")

type Store struct {
	storage storage.Provider
	log     zerolog.Logger
}

// New creates a fallback store. The global logger is used if logger is nil.
func New(p storage.Provider, logger *zerolog.Logger) *Store {
	if logger == nil {
		logger = &log.Logger
	}
	return &Store{
		storage: p,
		log:     logger.With().Str("component", "fallback").Logger(),
	}
}

// Load returns the stored snapshot.
// A missing, unreadable or corrupt snapshot is reported as absent.
func (s *Store) Load() ([]scores.MatchRecord, bool) {
	raw, ok, err := s.storage.Get(Key)
	if err != nil {
		s.log.Error().Err(err).Msg("Could not read fallback snapshot")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var records []scores.MatchRecord
	if err := json.Unmarshal(raw, &records); err != nil || records == nil {
		if err == nil {
			err = errNullSnapshot
		}
		s.log.Warn().Err(&storage.CorruptError{Key: Key, Err: err}).Msg("Ignoring corrupt fallback snapshot")
		return nil, false
	}
	return records, true
}

// Save replaces the snapshot.
func (s *Store) Save(records []scores.MatchRecord) error {
	if records == nil {
		records = []scores.MatchRecord{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return err
	}
	if err := s.storage.Set(Key, raw); err != nil {
		return err
	}
	s.log.Debug().Int("matches", len(records)).Msg("Saved fallback snapshot")
	return nil
}

// Clear removes the snapshot, discarding any local edits.
func (s *Store) Clear() error {
	return s.storage.Remove(Key)
}
