package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	apperrors "newsgraph/errors"
	"newsgraph/graph"
)

// SQLiteStore keeps the latest snapshot in a single-row table inside an
// embedded SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperrors.WrapErrorf(apperrors.ErrPersistenceUnavailable, "create %s: %v", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrPersistenceUnavailable, "open sqlite %s: %v", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, apperrors.WrapErrorf(apperrors.ErrPersistenceUnavailable, "ping sqlite %s: %v", path, err)
	}

	store := &SQLiteStore{db: db, logger: logger}
	if err := store.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Opened sqlite snapshot store", zap.String("path", path))
	return store, nil
}

// ensureSchema creates the required tables if they do not already exist.
func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	stmt := `CREATE TABLE IF NOT EXISTS snapshots (
        id INTEGER PRIMARY KEY CHECK (id = 1),
        payload TEXT NOT NULL,
        saved_at TIMESTAMP NOT NULL
    )`
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return apperrors.WrapErrorf(apperrors.ErrPersistenceUnavailable, "failed to execute schema statement: %v", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*graph.Snapshot, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Info("No saved graph found in sqlite")
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrPersistenceUnavailable, "query snapshot: %v", err)
	}

	var snapshot graph.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrParseFailure, "decode snapshot: %v", err)
	}
	return &snapshot, nil
}

func (s *SQLiteStore) Save(ctx context.Context, snapshot *graph.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return apperrors.WrapErrorf(apperrors.ErrParseFailure, "encode snapshot: %v", err)
	}

	query := `INSERT INTO snapshots (id, payload, saved_at) VALUES (1, ?, ?)
        ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`
	if _, err := s.db.ExecContext(ctx, query, payload, time.Now().UTC()); err != nil {
		return apperrors.WrapErrorf(apperrors.ErrPersistenceUnavailable, "upsert snapshot: %v", err)
	}

	s.logger.Debug("Saved graph snapshot to sqlite", zap.Int("bytes", len(payload)))
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
