package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anupam/lessontrack/internal/course"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store is the durable local document store. One progress document is kept
// per course id; writes replace the whole document atomically.
type Store struct {
	db  *sql.DB
	log *zap.Logger

	mu        sync.Mutex
	listeners []ChangeListener
}

// ChangeListener receives a copy of the document after every successful save.
// skipSync is true when the save resulted from applying a pull, in which case
// the sync engine must not push again.
type ChangeListener func(doc *course.Document, skipSync bool)

// Open creates a Store backed by the SQLite database at dsn.
// It applies recommended pragmas and creates the schema.
func Open(dsn string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DeviceID returns the stable identifier of this device, generating and
// persisting one on first use. It namespaces the local key space so two
// devices never share a document outside the sync path.
func (s *Store) DeviceID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT device_id FROM device WHERE id = 1`).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("query device id: %w", err)
	}

	id = uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO device (id, device_id) VALUES (1, ?) ON CONFLICT(id) DO NOTHING`, id)
	if err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	// Re-read in case a concurrent writer won the insert.
	if err := s.db.QueryRowContext(ctx, `SELECT device_id FROM device WHERE id = 1`).Scan(&id); err != nil {
		return "", fmt.Errorf("re-read device id: %w", err)
	}
	return id, nil
}

// applyPragmas configures SQLite for single-user durability.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS progress_documents (
		course_id  TEXT PRIMARY KEY,
		updated_at TEXT NOT NULL,
		data       TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS device (
		id        INTEGER PRIMARY KEY CHECK (id = 1),
		device_id TEXT NOT NULL
	);
	`
	_, err := db.Exec(schema)
	return err
}

// DefaultDBPath resolves the database file path in priority order:
// 1. LESSONTRACK_DB environment variable
// 2. $XDG_DATA_HOME/lessontrack/lessontrack.db
// 3. ~/.local/share/lessontrack/lessontrack.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("LESSONTRACK_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "lessontrack", "lessontrack.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
