// Package store persists card lists behind a single contract with
// interchangeable backends: postgres (pgx), sqlite (modernc), pebble
// (document-style KV), and an in-memory map for development and tests.
// The backend is selected by configuration, not by divergent code paths.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/cardlist"
)

// ErrNotFound is returned when no list exists for the given id. Callers
// surface it as a friendly "list not found" rather than a generic backend
// failure, so adapters must map their native not-found conditions to it.
var ErrNotFound = errors.New("card list not found")

// ErrDuplicateID is returned by Create when the id is already taken.
var ErrDuplicateID = errors.New("card list id already exists")

// Store is the persistence contract for card lists.
//
// Create persists the list exactly as given (id, name, cards, created_at)
// and fails with ErrDuplicateID on an id collision. Get fails with
// ErrNotFound for unknown ids. Rename updates the name only, leaving cards
// and created_at untouched, and is idempotent; it fails with ErrNotFound
// for unknown ids. All other errors indicate backend trouble.
type Store interface {
	Create(ctx context.Context, list *cardlist.List) error
	Get(ctx context.Context, id string) (*cardlist.List, error)
	Rename(ctx context.Context, id, name string) error
	Ping(ctx context.Context) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	// Driver is one of "postgres", "sqlite", "pebble", "memory".
	Driver string

	// PostgresURL plus pool sizing, used by the postgres driver.
	PostgresURL     string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration

	// SQLitePath is the database file path for the sqlite driver.
	SQLitePath string

	// PebblePath is the data directory for the pebble driver.
	PebblePath string
}

// Open creates the store for the configured driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "postgres":
		return openPostgres(ctx, opts)
	case "sqlite":
		return openSQLite(opts.SQLitePath)
	case "pebble":
		return openPebble(opts.PebblePath)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
