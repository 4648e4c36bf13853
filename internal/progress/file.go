package progress

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spigell/talent-scout/internal/output"
	"go.uber.org/zap"
)

// FileStore keeps the snapshot in a JSON file.
type FileStore struct {
	path   string
	logger *zap.Logger
}

func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(ctx context.Context) (*BatchState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("progress file is unreadable, starting fresh", zap.String("path", s.path), zap.Error(err))
		}
		return nil, nil
	}

	state, err := decode(data)
	if err != nil {
		s.logger.Warn("progress file is corrupt, starting fresh", zap.String("path", s.path), zap.Error(err))
		return nil, nil
	}

	return state, nil
}

func (s *FileStore) Save(_ context.Context, state *BatchState) error {
	data, err := encode(state)
	if err != nil {
		return err
	}
	if err := output.WriteFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear progress: %w", err)
	}
	return nil
}
