package storage

import (
	"sort"
	"sync"
)

// Provider is durable key/value storage, the equivalent of a browser's
// localStorage or of the server-side cache table.
// Values are opaque bytes; callers own the encoding.
//
// Implementations must be thread-safe!
type Provider interface {
	// Get returns the stored value for the given key, if it exists.
	// It also returns a boolean indicating whether the key was found.
	// A missing key is not an error.
	Get(key string) ([]byte, bool, error)
	// Set stores the given value under the given key, replacing any previous value.
	Set(key string, value []byte) error
	// Remove deletes the given key. Removing a missing key is not an error.
	Remove(key string) error
	// Keys calls the given callback for each stored key.
	Keys(cb func(string))
}

type MemStorage struct {
	mutex *sync.RWMutex
	db    map[string][]byte
}

func NewMemStorage() MemStorage {
	return MemStorage{
		mutex: &sync.RWMutex{},
		db:    make(map[string][]byte),
	}
}

func (m MemStorage) Get(key string) ([]byte, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	value, ok := m.db[key]
	if !ok {
		return nil, false, nil
	}
	// hand out a copy so callers cannot mutate stored bytes
	return append([]byte(nil), value...), true, nil
}

func (m MemStorage) Set(key string, value []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.db[key] = append([]byte(nil), value...)
	return nil
}

func (m MemStorage) Remove(key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.db, key)
	return nil
}

func (m MemStorage) Keys(cb func(string)) {
	m.mutex.RLock()
	keys := make([]string, 0, len(m.db))
	for key := range m.db {
		keys = append(keys, key)
	}
	m.mutex.RUnlock()
	sort.Strings(keys)
	for _, key := range keys {
		cb(key)
	}
}

// CorruptError reports a stored value that exists but cannot be decoded.
// Readers treat it as a missing value.
type CorruptError struct {
	Key string
	Err error
}

func (e *CorruptError) Error() string {
	return "corrupt storage entry " + e.Key + ": " + e.Err.Error()
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}
