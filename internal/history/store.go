package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users clear the database after a mismatch.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Kind distinguishes the two workflow run types.
type Kind string

const (
	KindImport   Kind = "import"
	KindTransfer Kind = "transfer"
)

// Run statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// Run is one recorded workflow execution.
type Run struct {
	ID             int64
	UUID           string
	Kind           Kind
	Source         string
	Destination    string
	Title          string
	Artist         string
	Album          string
	Date           string
	FingerprintSHA string
	Status         string
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Store manages run history persistence backed by SQLite. A nil Store is a
// usable no-op so callers need not branch on disabled history.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// Record inserts a finished run. The run's UUID and timestamps are assigned
// when missing.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if s == nil || s.db == nil {
		return nil
	}
	if run == nil {
		return errors.New("run required")
	}
	if run.UUID == "" {
		run.UUID = uuid.NewString()
	}
	now := time.Now().UTC()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	run.UpdatedAt = now

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (uuid, kind, source, destination, title, artist, album, date,
			fingerprint_sha, status, error_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.UUID, string(run.Kind), run.Source, run.Destination,
		run.Title, run.Artist, run.Album, run.Date,
		run.FingerprintSHA, run.Status, run.ErrorMessage,
		run.CreatedAt.Format(time.RFC3339), run.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	run.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("read run id: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, uuid, kind, source, destination, title, artist, album, date,
			fingerprint_sha, status, error_message, created_at, updated_at
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FindImportByFingerprint returns the most recent completed import with the
// given fingerprint hash, or nil when none exists.
func (s *Store) FindImportByFingerprint(ctx context.Context, fingerprintSHA string) (*Run, error) {
	if s == nil || s.db == nil || fingerprintSHA == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT id, uuid, kind, source, destination, title, artist, album, date,
			fingerprint_sha, status, error_message, created_at, updated_at
		FROM runs
		WHERE kind = ? AND fingerprint_sha = ? AND status = ?
		ORDER BY id DESC LIMIT 1`,
		string(KindImport), fingerprintSHA, StatusCompleted)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var kind, createdAt, updatedAt string
	err := row.Scan(&run.ID, &run.UUID, &kind, &run.Source, &run.Destination,
		&run.Title, &run.Artist, &run.Album, &run.Date,
		&run.FingerprintSHA, &run.Status, &run.ErrorMessage, &createdAt, &updatedAt)
	if err != nil {
		return Run{}, err
	}
	run.Kind = Kind(kind)
	if ts, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
		run.CreatedAt = ts
	}
	if ts, parseErr := time.Parse(time.RFC3339, updatedAt); parseErr == nil {
		run.UpdatedAt = ts
	}
	return run, nil
}

// FingerprintSHA computes the stable digest stored for dedup checks.
// Chromaprint fingerprints run to kilobytes; only the hash is persisted.
func FingerprintSHA(fingerprint string) string {
	if fingerprint == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(fingerprint))
	return hex.EncodeToString(sum[:])
}
