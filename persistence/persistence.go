package persistence

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"newsgraph/config"
	apperrors "newsgraph/errors"
	"newsgraph/graph"
)

// Store persists graph snapshots. Load returns (nil, nil) when nothing has
// been saved yet so callers can distinguish a fresh start from a failure.
type Store interface {
	Load(ctx context.Context) (*graph.Snapshot, error)
	Save(ctx context.Context, snapshot *graph.Snapshot) error
	Close() error
}

// Open builds the Store selected by STORAGE_DRIVER: "file", "sqlite", or
// "postgres".
func Open(cfg *config.Config, logger *zap.Logger) (Store, error) {
	switch strings.ToLower(cfg.StorageDriver) {
	case "", "file":
		return NewFileStore(cfg.StoragePath, logger), nil
	case "sqlite":
		path := cfg.StorageDSN
		if path == "" {
			path = cfg.StoragePath
		}
		return NewSQLiteStore(path, logger)
	case "postgres":
		return NewPostgresStore(cfg.StorageDSN, logger)
	default:
		return nil, apperrors.WrapErrorf(apperrors.ErrInvalidInput, "unsupported storage driver %q", cfg.StorageDriver)
	}
}
