package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	apperrors "newsgraph/errors"
	"newsgraph/graph"
)

// FileStore persists snapshots as a single JSON document. Writes go to a
// temp file in the same directory followed by a rename, so a crash mid-save
// never corrupts the previous snapshot.
type FileStore struct {
	path   string
	logger *zap.Logger
}

func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

func (f *FileStore) Load(ctx context.Context) (*graph.Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		f.logger.Info("No saved graph found", zap.String("path", f.path))
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrPersistenceUnavailable, "read %s: %v", f.path, err)
	}

	var snapshot graph.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrParseFailure, "decode %s: %v", f.path, err)
	}
	return &snapshot, nil
}

func (f *FileStore) Save(ctx context.Context, snapshot *graph.Snapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return apperrors.WrapErrorf(apperrors.ErrParseFailure, "encode snapshot: %v", err)
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.WrapErrorf(apperrors.ErrPersistenceUnavailable, "create %s: %v", dir, err)
		}
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return apperrors.WrapErrorf(apperrors.ErrPersistenceUnavailable, "write %s: %v", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return apperrors.WrapErrorf(apperrors.ErrPersistenceUnavailable, "rename %s: %v", tmp, err)
	}

	f.logger.Debug("Saved graph snapshot",
		zap.String("path", f.path),
		zap.Int("bytes", len(data)))
	return nil
}

func (f *FileStore) Close() error { return nil }
