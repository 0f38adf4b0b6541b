package sidecar

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"asset-browser/internal/logging"
	"asset-browser/internal/metrics"
)

// Default timeout for store operations
const defaultTimeout = 5 * time.Second

// Store is the on-disk sidecar metadata store: a small sqlite database
// holding per-item settings keyed by content key. The enrichment workers
// only read from it; editors write through the same API.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// Note is one todo/note entry attached to an item.
type Note struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// New opens (creating if necessary) the sidecar store at dbPath. The
// parent directory must already exist and be writable.
func New(ctx context.Context, dbPath string) (*Store, error) {
	// WAL mode keeps reads cheap while editors write from the UI thread.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open sidecar store: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close sidecar store after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to sidecar store: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}
	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close sidecar store after init failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize sidecar schema: %w", err)
	}

	logging.Info("Sidecar store initialized at %s", dbPath)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		key TEXT PRIMARY KEY,
		description TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		flags INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);
	`
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the store's database file path.
func (s *Store) Path() string { return s.dbPath }

func (s *Store) value(ctx context.Context, key, column string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var value string
	// column comes from a fixed internal set, never caller input
	q := fmt.Sprintf("SELECT %s FROM items WHERE key = ?", column)
	err := s.db.QueryRowContext(ctx, q, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.SidecarReads.WithLabelValues(column, "absent").Inc()
		return "", nil
	}
	if err != nil {
		metrics.SidecarReads.WithLabelValues(column, "error").Inc()
		return "", err
	}
	metrics.SidecarReads.WithLabelValues(column, "ok").Inc()
	return value, nil
}

// Description returns the description stored for key, or "" when absent.
func (s *Store) Description(ctx context.Context, key string) (string, error) {
	return s.value(ctx, key, "description")
}

// Notes returns the notes stored for key, or nil when absent.
func (s *Store) Notes(ctx context.Context, key string) ([]Note, error) {
	raw, err := s.value(ctx, key, "notes")
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var notes []Note
	if err := json.Unmarshal([]byte(raw), &notes); err != nil {
		return nil, fmt.Errorf("corrupt notes for %q: %w", key, err)
	}
	return notes, nil
}

// Flags returns the flags bitmask stored for key, or 0 when absent.
func (s *Store) Flags(ctx context.Context, key string) (uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var flags uint32
	err := s.db.QueryRowContext(ctx, "SELECT flags FROM items WHERE key = ?", key).Scan(&flags)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.SidecarReads.WithLabelValues("flags", "absent").Inc()
		return 0, nil
	}
	if err != nil {
		metrics.SidecarReads.WithLabelValues("flags", "error").Inc()
		return 0, err
	}
	metrics.SidecarReads.WithLabelValues("flags", "ok").Inc()
	return flags, nil
}

func (s *Store) upsert(ctx context.Context, key, column, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := fmt.Sprintf(`
		INSERT INTO items (key, %[1]s, updated_at) VALUES (?, ?, strftime('%%s', 'now'))
		ON CONFLICT(key) DO UPDATE SET %[1]s = excluded.%[1]s, updated_at = excluded.updated_at
	`, column)
	_, err := s.db.ExecContext(ctx, q, key, value)
	return err
}

// SetDescription stores the description for key.
func (s *Store) SetDescription(ctx context.Context, key, description string) error {
	return s.upsert(ctx, key, "description", description)
}

// SetNotes stores the notes for key.
func (s *Store) SetNotes(ctx context.Context, key string, notes []Note) error {
	raw, err := json.Marshal(notes)
	if err != nil {
		return err
	}
	return s.upsert(ctx, key, "notes", string(raw))
}

// SetFlags stores the flags bitmask for key.
func (s *Store) SetFlags(ctx context.Context, key string, flags uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (key, flags, updated_at) VALUES (?, ?, strftime('%s', 'now'))
		ON CONFLICT(key) DO UPDATE SET flags = excluded.flags, updated_at = excluded.updated_at
	`, key, flags)
	return err
}

// CountOpenNotes returns the number of notes that have text and are not
// checked off.
func CountOpenNotes(notes []Note) int {
	count := 0
	for _, n := range notes {
		if n.Text != "" && !n.Checked {
			count++
		}
	}
	return count
}
