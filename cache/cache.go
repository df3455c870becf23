package cache

import (
	"context"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/KaueAmbrosio/WebSiteEsporte/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultTTL is the freshness window used when none is configured.
const DefaultTTL = 5 * time.Minute

// Fetcher produces a new value for a key, usually by calling the upstream API.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Status describes how a value was obtained.
type Status string

const (
	// The stored value was fresh.
	StatusHit Status = "hit"
	// The stored value was stale and served while a background refresh runs.
	StatusStale Status = "stale"
	// Nothing was stored; the value was fetched synchronously.
	StatusMiss Status = "miss"
	// The stored value was stale and was replaced synchronously.
	StatusRefreshed Status = "refreshed"
	// The refresh failed and a stale value was served instead.
	StatusDegraded Status = "degraded"
)

// Entry is a cached value with the time it was fetched.
type Entry[T any] struct {
	Value     T
	FetchedAt time.Time
}

// envelope is the stored form of an entry.
type envelope[T any] struct {
	FetchedAt int64 `json:"fetchedAt"`
	Data      T     `json:"data"`
}

type Config struct {
	// Freshness window. DefaultTTL is used if zero.
	TTL time.Duration
	// Time limit for a single background refresh. Defaults to 30 seconds.
	RefreshTimeout time.Duration
	// Clock used for stamping and freshness checks. time.Now if nil.
	Now func() time.Time
	// Logger to use. The global zerolog logger is used if nil.
	Logger *zerolog.Logger
}

// Cache is a TTL cache of values of type T kept in a storage provider.
// Entries are replaced wholesale; they are never partially updated.
type Cache[T any] struct {
	store          storage.Provider
	ttl            time.Duration
	refreshTimeout time.Duration
	now            func() time.Time
	log            zerolog.Logger

	refreshes sync.WaitGroup

	hookMu   sync.RWMutex
	onUpdate []func(key string, value T)
}

// New creates a cache on top of the given provider.
func New[T any](store storage.Provider, config Config) *Cache[T] {
	var logger zerolog.Logger
	if config.Logger == nil {
		logger = log.Logger
	} else {
		logger = *config.Logger
	}
	c := &Cache[T]{
		store:          store,
		ttl:            config.TTL,
		refreshTimeout: config.RefreshTimeout,
		now:            config.Now,
		log:            logger.With().Str("component", "cache").Logger(),
	}
	if c.ttl <= 0 {
		c.ttl = DefaultTTL
	}
	if c.refreshTimeout <= 0 {
		c.refreshTimeout = 30 * time.Second
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// TTL returns the freshness window.
func (c *Cache[T]) TTL() time.Duration {
	return c.ttl
}

// Get returns the stored entry for key, fresh or not.
// It never touches the network. Unreadable entries are reported as absent.
func (c *Cache[T]) Get(key string) (Entry[T], bool) {
	raw, ok, err := c.store.Get(key)
	if err != nil {
		c.log.Error().Err(err).Str("key", key).Msg("Could not read from storage")
		return Entry[T]{}, false
	}
	if !ok {
		return Entry[T]{}, false
	}
	var env envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		c.log.Warn().Err(&storage.CorruptError{Key: key, Err: err}).Msg("Ignoring unreadable cache entry")
		return Entry[T]{}, false
	}
	return Entry[T]{Value: env.Data, FetchedAt: time.UnixMilli(env.FetchedAt)}, true
}

// Put replaces the entry for key with value, stamped with the current time.
func (c *Cache[T]) Put(key string, value T) error {
	raw, err := json.Marshal(envelope[T]{
		FetchedAt: c.now().UnixMilli(),
		Data:      value,
	})
	if err != nil {
		return err
	}
	if err := c.store.Set(key, raw); err != nil {
		return err
	}
	c.log.Trace().Str("key", key).Msg("Cache write")
	return nil
}

// IsFresh reports whether the entry is younger than the TTL at time now.
func (c *Cache[T]) IsFresh(e Entry[T], now time.Time) bool {
	return now.Sub(e.FetchedAt) < c.ttl
}

// OnUpdate registers a function that is called after every value fetched
// through the cache has been stored.
func (c *Cache[T]) OnUpdate(fn func(key string, value T)) {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	c.onUpdate = append(c.onUpdate, fn)
}

// Wait blocks until all background refreshes started so far have finished.
func (c *Cache[T]) Wait() {
	c.refreshes.Wait()
}

// save stores a fetched value and notifies listeners.
// A failed write is logged; the value is still usable by the caller.
func (c *Cache[T]) save(key string, value T) {
	if err := c.Put(key, value); err != nil {
		c.log.Error().Err(err).Str("key", key).Msg("Could not write to cache")
		return
	}
	c.hookMu.RLock()
	hooks := c.onUpdate
	c.hookMu.RUnlock()
	for _, fn := range hooks {
		fn(key, value)
	}
}
