package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	apperrors "newsgraph/errors"
	"newsgraph/graph"
)

// PostgresStore keeps the latest snapshot as a JSONB document in a
// single-row table.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresStore(connStr string, logger *zap.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrPersistenceUnavailable, "open postgres: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, apperrors.WrapErrorf(apperrors.ErrPersistenceUnavailable, "ping postgres: %v", err)
	}

	store := &PostgresStore{db: db, logger: logger}
	if err := store.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Connected to postgres snapshot store")
	return store, nil
}

// ensureSchema creates the required tables if they do not already exist.
func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	stmt := `CREATE TABLE IF NOT EXISTS graph_snapshots (
        id INTEGER PRIMARY KEY CHECK (id = 1),
        payload JSONB NOT NULL,
        saved_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return apperrors.WrapErrorf(apperrors.ErrPersistenceUnavailable, "failed to execute schema statement: %v", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (*graph.Snapshot, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM graph_snapshots WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Info("No saved graph found in postgres")
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

func (s *PostgresStore) Save(ctx context.Context, snapshot *graph.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return apperrors.WrapErrorf(apperrors.ErrParseFailure, "encode snapshot: %v", err)
	}

	query := `INSERT INTO graph_snapshots (id, payload, saved_at) VALUES (1, $1, $2)
        ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, saved_at = EXCLUDED.saved_at`
	if _, err := s.db.ExecContext(ctx, query, payload, time.Now().UTC()); err != nil {
		return apperrors.WrapErrorf(apperrors.ErrPersistenceUnavailable, "upsert snapshot: %v", err)
	}

	s.logger.Debug("Saved graph snapshot to postgres", zap.Int("bytes", len(payload)))
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
