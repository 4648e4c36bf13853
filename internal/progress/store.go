package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"

	DefaultFile     = "progress.json"
	DefaultDatabase = "progress.db"
)

// Store persists a single BatchState. Only one pipeline may use a store at a time.
type Store interface {
	// Load returns nil without an error when no usable snapshot exists.
	// Unreadable or corrupt snapshots are treated as absent.
	Load(ctx context.Context) (*BatchState, error)
	// Save atomically replaces the stored snapshot.
	Save(ctx context.Context, state *BatchState) error
	// Clear removes the snapshot. Clearing an absent snapshot is not an error.
	Clear(ctx context.Context) error
}

// Config selects and configures the store backend.
type Config struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// Open returns the store selected by cfg.
func Open(cfg Config, logger *zap.Logger) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	path := strings.TrimSpace(cfg.Path)

	switch backend {
	case "", BackendFile:
		if path == "" {
			path = DefaultFile
		}
		return NewFileStore(path, logger), nil
	case BackendSQLite:
		if path == "" {
			path = DefaultDatabase
		}
		return NewSQLiteStore(path, logger)
	default:
		return nil, fmt.Errorf("unsupported progress backend: %s", cfg.Backend)
	}
}

func encode(state *BatchState) ([]byte, error) {
	data, err := json.MarshalIndent(state.Snapshot(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode progress: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*BatchState, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return Restore(snap)
}
