// Package store mirrors simulation log output into a migration-managed
// sqlite database, alongside the CSV files the log emitter contract
// requires. It never replaces the CSV streams; it is an additional sink
// that the same events and measurements fan out to.
package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/orbitwatch/orbitsim"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a sqlite connection already migrated to the latest schema.
type Store struct {
	*sql.DB
	runID string
}

// Open creates (or reuses) a sqlite database at path, applies pending
// migrations, and records a new run row identified by runID.
func Open(path, runID, policy, spacing string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{DB: db, runID: runID}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := s.Exec(
		`INSERT INTO runs (run_id, policy, spacing, started_at_unix) VALUES (?, ?, ?, ?)`,
		runID, policy, spacing, time.Now().Unix(),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: insert run row: %w", err)
	}

	return s, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("store: exec %q: %w", p, err)
		}
	}
	return nil
}

func (s *Store) migrateUp() error {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("store: sub filesystem for migrations: %w", err)
	}
	sourceDriver, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("store: iofs source driver: %w", err)
	}
	dbDriver, err := sqlite.WithInstance(s.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("store: sqlite migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("store: migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("store: migrate up: %w", err)
	}
	return nil
}

type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) { log.Printf("[store migrate] "+format, v...) }
func (l *migrateLogger) Verbose() bool                          { return false }

// EmitEvent implements orbitsim.EventSink.
func (s *Store) EmitEvent(name string, now time.Time) {
	if _, err := s.Exec(
		`INSERT INTO events (run_id, name, at_unix_nanos) VALUES (?, ?, ?)`,
		s.runID, name, now.UnixNano(),
	); err != nil {
		log.Printf("store: insert event %q: %v", name, err)
	}
}

// EmitMeasurement implements orbitsim.EventSink.
func (s *Store) EmitMeasurement(stream string, value float64, now time.Time) {
	if _, err := s.Exec(
		`INSERT INTO measurements (run_id, stream, value, at_unix_nanos) VALUES (?, ?, ?, ?)`,
		s.runID, stream, value, now.UnixNano(),
	); err != nil {
		log.Printf("store: insert measurement %q: %v", stream, err)
	}
}

var _ orbitsim.EventSink = (*Store)(nil)
