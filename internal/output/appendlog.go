// Package output holds the append-only result logs written by the pipeline.
package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// AppendLog is an append-only sequence of records stored as one JSON array.
// Every Append rewrites the whole file through a temporary file and a rename,
// so an interrupted write leaves the previous array intact.
type AppendLog[T any] struct {
	path string
	mu   sync.Mutex
}

func NewAppendLog[T any](path string) *AppendLog[T] {
	return &AppendLog[T]{path: path}
}

// Path returns the backing file location.
func (l *AppendLog[T]) Path() string { return l.path }

// Append adds record to the end of the log.
func (l *AppendLog[T]) Append(record T) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.read()
	if err != nil {
		return err
	}

	records = append(records, record)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode %s: %w", l.path, err)
	}

	return WriteFileAtomic(l.path, buf.Bytes())
}

// ReadAll returns every record in insertion order. A missing or empty file is an empty log.
func (l *AppendLog[T]) ReadAll() ([]T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.read()
}

// Count returns the number of records.
func (l *AppendLog[T]) Count() (int, error) {
	records, err := l.ReadAll()
	return len(records), err
}

func (l *AppendLog[T]) read() ([]T, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", l.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", l.path, err)
	}
	if records == nil {
		records = []T{}
	}

	return records, nil
}

// WriteFileAtomic replaces path with data using a temporary file in the same directory.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}

	return nil
}
