package cache

import (
	"context"
	"fmt"
)

// GetOrRefresh serves key stale-while-revalidate:
//
//   - a fresh entry is returned without calling fetch;
//   - a stale entry is returned immediately and fetch runs once in the
//     background; on failure the stale entry stays and the error is only logged;
//   - with no entry, fetch runs synchronously and its error is returned.
func (c *Cache[T]) GetOrRefresh(ctx context.Context, key string, fetch Fetcher[T]) (T, Status, error) {
	now := c.now()
	if entry, ok := c.Get(key); ok {
		if c.IsFresh(entry, now) {
			c.log.Trace().Str("key", key).Msg("Cache hit")
			return entry.Value, StatusHit, nil
		}
		c.log.Debug().Str("key", key).Time("fetchedAt", entry.FetchedAt).Msg("Serving stale entry, refreshing in background")
		c.refreshInBackground(key, fetch)
		return entry.Value, StatusStale, nil
	}

	c.log.Debug().Str("key", key).Msg("Cache miss, fetching")
	value, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, StatusMiss, fmt.Errorf("fetch %s: %w", key, err)
	}
	c.save(key, value)
	return value, StatusMiss, nil
}

// GetOrFetch never refreshes in the background: a missing or expired entry is
// fetched synchronously. If that fetch fails, a previously stored value is
// served however old it is. Only when nothing was ever stored does the
// error reach the caller.
func (c *Cache[T]) GetOrFetch(ctx context.Context, key string, fetch Fetcher[T]) (T, Status, error) {
	entry, found := c.Get(key)
	if found && c.IsFresh(entry, c.now()) {
		c.log.Trace().Str("key", key).Msg("Cache hit")
		return entry.Value, StatusHit, nil
	}

	value, err := fetch(ctx)
	if err == nil {
		c.save(key, value)
		if found {
			return value, StatusRefreshed, nil
		}
		return value, StatusMiss, nil
	}

	if found {
		c.log.Warn().Err(err).Str("key", key).Time("fetchedAt", entry.FetchedAt).Msg("Refresh failed, serving stale entry")
		return entry.Value, StatusDegraded, nil
	}
	var zero T
	return zero, StatusMiss, fmt.Errorf("fetch %s: %w", key, err)
}

// refreshInBackground runs fetch in a detached goroutine.
// It is not bound to the caller's context: the refresh runs to completion even
// if the request that triggered it has already been answered.
func (c *Cache[T]) refreshInBackground(key string, fetch Fetcher[T]) {
	c.refreshes.Add(1)
	go func() {
		defer c.refreshes.Done()
		defer func() {
			if r := recover(); r != nil {
				c.log.Error().Interface("panic", r).Str("key", key).Msg("Panic in background refresh")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), c.refreshTimeout)
		defer cancel()

		value, err := fetch(ctx)
		if err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("Could not refresh cache entry")
			return
		}
		c.save(key, value)
		c.log.Debug().Str("key", key).Msg("Refreshed cache entry")
	}()
}
