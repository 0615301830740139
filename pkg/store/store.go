// Package store implements the engine's persistent Key/Value Store (C1): a
// single embedded SQLite table (config(key, value)) with a JSON-typed overlay
// layered on top. It is the only component that survives across sessions.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/meticulous-run/meticulous/pkg/logger"
)

var storeLog = logger.New("store:sqlite")

type workerGuardKey struct{}

// WithWorkerContext marks ctx as originating from a worker-pool goroutine.
// The Worker Pool (C4) wraps every task invocation in this context so the
// Store can refuse access when guarding is enabled.
func WithWorkerContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, workerGuardKey{}, true)
}

func isWorkerContext(ctx context.Context) bool {
	v, _ := ctx.Value(workerGuardKey{}).(bool)
	return v
}

// ErrWorkerAccessDenied is returned when a worker-pool goroutine calls the
// Store while guarding is enabled.
var ErrWorkerAccessDenied = fmt.Errorf("store: access from worker threads is disabled")

// Store is a durable string->string map backed by a local SQLite database,
// with a JSON-typed overlay for structured values.
type Store struct {
	db          *sql.DB
	guardWorker bool
}

// Open opens (creating if necessary) the SQLite database at dsn and ensures the
// config table exists. guardWorker, when true, makes Get/Set/GetJSON/SetJSON
// refuse calls made from a worker-pool context (see WithWorkerContext); this
// is an optional guard against lock contention on the embedded backend, not a
// correctness requirement, since SQLite itself serializes writers.
func Open(dsn string, guardWorker bool) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", dsn, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite is not safe for concurrent writers across connections

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS config (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}

	storeLog.Printf("opened store at %s (worker guard=%v)", dsn, guardWorker)
	return &Store{db: db, guardWorker: guardWorker}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) checkGuard(ctx context.Context) error {
	if s.guardWorker && isWorkerContext(ctx) {
		return ErrWorkerAccessDenied
	}
	return nil
}

// Get returns the raw string value for key, and whether it was present.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := s.checkGuard(ctx); err != nil {
		return "", false, err
	}

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: get %q: %w", key, err)
	}
	return value, true, nil
}

// Set atomically overwrites the value for key. fsync durability is not
// guaranteed by this call; a crash between Set calls must not corrupt rows,
// which SQLite's page-level atomicity already provides.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.checkGuard(ctx); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO config (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("store: set %q: %w", key, err)
	}
	return nil
}

// GetJSON decodes the JSON-valued overlay for key into dest. If key is absent,
// dest is left unmodified, so callers pre-populate dest with their default
// (mirroring the specification's get_json(k, default) contract).
func (s *Store) GetJSON(ctx context.Context, key string, dest any) error {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("store: get_json %q: corrupt JSON: %w", key, err)
	}
	return nil
}

// SetJSON encodes value as JSON and stores it under key.
func (s *Store) SetJSON(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: set_json %q: %w", key, err)
	}
	return s.Set(ctx, key, string(raw))
}
