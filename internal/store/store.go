// Package store persists the crawl's scratch artifacts (spec.md §6
// "Persisted scratch"): the raw cached page used for SetState replay, and
// the pre-injected variant carrying the instrumentation preamble and
// completion sentinel. It also offers an optional durable cache for
// captured BuildData keyed by (entry point, xpath, action), grounded on
// the teacher's internal/store/local_core.go SQLite patterns, adapted to a
// pure-Go driver so the crawl binary stays cgo-free.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/a11ycrawl/a11ycrawl/internal/logging"

	"go.uber.org/zap"
)

// Store is a single-file SQLite-backed cache of raw/pre-injected page
// scratch and build-data capture records.
type Store struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string
}

// Open creates or reuses the SQLite database at path, applying the same
// WAL/synchronous pragmas the teacher's local stores use for a
// single-writer workload.
func Open(path string) (*Store, error) {
	log := logging.Get(logging.CategoryReport)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: creating directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		log.Warn("store: journal_mode pragma failed", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		log.Warn("store: synchronous pragma failed", zap.Error(err))
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS page_scratch (
	entry_point TEXT NOT NULL,
	state_key   TEXT NOT NULL,
	raw_page    TEXT NOT NULL,
	injected    TEXT NOT NULL,
	sentinel    TEXT NOT NULL,
	PRIMARY KEY (entry_point, state_key)
);
CREATE TABLE IF NOT EXISTS build_data_cache (
	entry_point TEXT NOT NULL,
	xpath       TEXT NOT NULL,
	action      TEXT NOT NULL,
	payload     TEXT NOT NULL,
	PRIMARY KEY (entry_point, xpath, action)
);
`
	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("store: migrating schema: %w", err)
	}
	return nil
}

// PageScratch is the raw/pre-injected pair for one state's replay handle.
type PageScratch struct {
	RawPage  string
	Injected string
	Sentinel string
}

// PutPageScratch records or replaces the scratch pair for (entryPoint,
// stateKey); stateKey is typically the state's replay xpath chain.
func (s *Store) PutPageScratch(entryPoint, stateKey string, ps PageScratch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`INSERT INTO page_scratch (entry_point, state_key, raw_page, injected, sentinel)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(entry_point, state_key) DO UPDATE SET
		   raw_page = excluded.raw_page,
		   injected = excluded.injected,
		   sentinel = excluded.sentinel`,
		entryPoint, stateKey, ps.RawPage, ps.Injected, ps.Sentinel,
	)
	if err != nil {
		return fmt.Errorf("store: put page scratch: %w", err)
	}
	return nil
}

// GetPageScratch looks up a previously stored scratch pair.
func (s *Store) GetPageScratch(entryPoint, stateKey string) (PageScratch, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRow(
		`SELECT raw_page, injected, sentinel FROM page_scratch WHERE entry_point = ? AND state_key = ?`,
		entryPoint, stateKey,
	)
	var ps PageScratch
	if err := row.Scan(&ps.RawPage, &ps.Injected, &ps.Sentinel); err != nil {
		if err == sql.ErrNoRows {
			return PageScratch{}, false, nil
		}
		return PageScratch{}, false, fmt.Errorf("store: get page scratch: %w", err)
	}
	return ps, true, nil
}

// PutBuildData caches a build-data capture payload (already JSON-encoded
// by the caller) for (entryPoint, xpath, action), so a re-run of the same
// entry point can skip re-measuring an edge that was already captured.
func (s *Store) PutBuildData(entryPoint, xpath, action, payloadJSON string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`INSERT INTO build_data_cache (entry_point, xpath, action, payload)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(entry_point, xpath, action) DO UPDATE SET payload = excluded.payload`,
		entryPoint, xpath, action, payloadJSON,
	)
	if err != nil {
		return fmt.Errorf("store: put build data: %w", err)
	}
	return nil
}

// GetBuildData returns the cached payload, if any.
func (s *Store) GetBuildData(entryPoint, xpath, action string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRow(
		`SELECT payload FROM build_data_cache WHERE entry_point = ? AND xpath = ? AND action = ?`,
		entryPoint, xpath, action,
	)
	var payload string
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("store: get build data: %w", err)
	}
	return payload, true, nil
}
