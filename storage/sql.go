package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"
	_ "github.com/lib/pq"
)

// dialect holds the statements that differ between SQL engines.
type dialect struct {
	driver string
	schema []string
	get    string
	set    string
	remove string
	keys   string
}

var sqliteDialect = dialect{
	driver: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS storage (
			key TEXT PRIMARY KEY,
			value BLOB,
			updated_at INTEGER
		)`,
		"PRAGMA journal_mode=WAL",
	},
	get:    "SELECT value FROM storage WHERE key = ?",
	set:    "INSERT OR REPLACE INTO storage (key, value, updated_at) VALUES (?, ?, ?)",
	remove: "DELETE FROM storage WHERE key = ?",
	keys:   "SELECT key FROM storage ORDER BY key",
}

var postgresDialect = dialect{
	driver: "postgres",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS storage (
			key TEXT PRIMARY KEY,
			value BYTEA,
			updated_at BIGINT
		)`,
	},
	get: "SELECT value FROM storage WHERE key = $1",
	set: `INSERT INTO storage (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
	remove: "DELETE FROM storage WHERE key = $1",
	keys:   "SELECT key FROM storage ORDER BY key",
}

// SQLStorage is a Provider backed by a database/sql connection.
type SQLStorage struct {
	db         *sql.DB
	dialect    dialect
	writeMutex *sync.Mutex
}

// NewSQLiteStorage opens (or creates) an SQLite database with the given file name.
// If file name is empty, a new in-memory db is opened.
func NewSQLiteStorage(filename string) (*SQLStorage, error) {
	if filename == "" {
		filename = "file::memory:?cache=shared"
	}
	return openSQL(sqliteDialect, filename)
}

// NewPostgresStorage connects to Postgres using the given DSN.
func NewPostgresStorage(dsn string) (*SQLStorage, error) {
	s, err := openSQL(postgresDialect, dsn)
	if err != nil {
		return nil, err
	}
	s.db.SetMaxOpenConns(10)
	s.db.SetMaxIdleConns(2)
	return s, nil
}

func openSQL(d dialect, dsn string) (*SQLStorage, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", d.driver, err)
	}
	for _, stmt := range d.schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("prepare %s storage: %w", d.driver, err)
		}
	}
	return &SQLStorage{
		db:         db,
		dialect:    d,
		writeMutex: &sync.Mutex{},
	}, nil
}

func (s *SQLStorage) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow(s.dialect.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *SQLStorage) Set(key string, value []byte) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec(s.dialect.set, key, value, time.Now().Unix())
	return err
}

func (s *SQLStorage) Remove(key string) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec(s.dialect.remove, key)
	return err
}

func (s *SQLStorage) Keys(cb func(string)) {
	rows, err := s.db.Query(s.dialect.keys)
	if err != nil {
		return
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return
		}
		cb(key)
	}
}

// Close closes the underlying database.
func (s *SQLStorage) Close() error {
	return s.db.Close()
}

// Open creates a provider from a string of the form
// "memory", "sqlite:<file>" or "postgres:<dsn>".
func Open(uri string) (Provider, error) {
	scheme, arg, _ := strings.Cut(uri, ":")
	switch scheme {
	case "", "memory":
		return NewMemStorage(), nil
	case "sqlite":
		return NewSQLiteStorage(arg)
	case "postgres":
		return NewPostgresStorage(arg)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", scheme)
	}
}
