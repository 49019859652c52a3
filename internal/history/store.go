package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"introspect/internal/analysis"
)

// Store persists completed analysis runs in SQLite.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
	path string
}

// ErrNotFound indicates the requested run does not exist.
var ErrNotFound = errors.New("history: run not found")

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	video_path TEXT NOT NULL,
	privacy_mode TEXT NOT NULL,
	risk_level TEXT NOT NULL,
	score INTEGER NOT NULL,
	dominant_video_emotion TEXT NOT NULL,
	result_json TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
`

const schemaVersion = 1

// RunRecord is one row of the run history listing.
type RunRecord struct {
	ID           string
	CreatedAt    time.Time
	VideoPath    string
	PrivacyMode  string
	RiskLevel    string
	Score        int
	VideoEmotion string
}

// Open initializes or connects to the history database under dataDir. A
// file lock beside the database guards against concurrent writers from a
// second process.
func Open(dataDir string) (*Store, error) {
	lock := flock.New(filepath.Join(dataDir, "history.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire history lock: %w", err)
	}
	if !locked {
		return nil, errors.New("history database is locked by another process")
	}

	dbPath := filepath.Join(dataDir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			db.Close()
			lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, lock: lock, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		db.Close()
		lock.Unlock()
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	var version int
	err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case version > schemaVersion:
		return fmt.Errorf("history database schema version %d is newer than supported %d", version, schemaVersion)
	}
	return nil
}

// SaveRun persists a completed run. The full result is stored as JSON
// alongside the indexed summary columns.
func (s *Store) SaveRun(ctx context.Context, result *analysis.Result) error {
	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, video_path, privacy_mode, risk_level, score, dominant_video_emotion, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID,
		time.Now().UTC().Format(time.RFC3339),
		result.VideoPath,
		result.PrivacyMode.String(),
		result.Summary.RiskLevel,
		result.Summary.MentalHealthScore,
		result.Summary.VideoEmotion,
		string(encoded),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, video_path, privacy_mode, risk_level, score, dominant_video_emotion
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var record RunRecord
		var createdAt string
		if err := rows.Scan(&record.ID, &createdAt, &record.VideoPath, &record.PrivacyMode,
			&record.RiskLevel, &record.Score, &record.VideoEmotion); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if parsed, err := time.Parse(time.RFC3339, createdAt); err == nil {
			record.CreatedAt = parsed
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetRun loads the full stored result for one run.
func (s *Store) GetRun(ctx context.Context, id string) (*analysis.Result, error) {
	var encoded string
	err := s.db.QueryRowContext(ctx, "SELECT result_json FROM runs WHERE id = ?", id).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}
	var result analysis.Result
	if err := json.Unmarshal([]byte(encoded), &result); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	return &result, nil
}

// Close releases the database connection and the writer lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var firstErr error
	if s.db != nil {
		firstErr = s.db.Close()
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
