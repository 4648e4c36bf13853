package output

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const failureSeparator = " | Error: "

// Failure is a work item that could not be processed.
type Failure struct {
	URL     string
	Message string
}

// String renders the failure as a single log line.
func (f Failure) String() string {
	return f.URL + failureSeparator + flatten(f.Message)
}

// ParseFailure is the inverse of Failure.String.
func ParseFailure(line string) (Failure, bool) {
	url, message, ok := strings.Cut(line, failureSeparator)
	if !ok {
		return Failure{}, false
	}
	return Failure{URL: url, Message: message}, true
}

// FailureLog is a line-oriented text log of failures.
type FailureLog struct {
	path string
	mu   sync.Mutex
}

func NewFailureLog(path string) *FailureLog {
	return &FailureLog{path: path}
}

func (l *FailureLog) Path() string { return l.path }

// Append writes one line for the failure.
func (l *FailureLog) Append(f Failure) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", l.path, err)
	}

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", l.path, err)
	}

	if _, err := file.WriteString(f.String() + "\n"); err != nil {
		_ = file.Close()
		return fmt.Errorf("write %s: %w", l.path, err)
	}

	return file.Close()
}

// ReadAll returns the failures in the order they were written. Malformed lines are skipped.
func (l *FailureLog) ReadAll() ([]Failure, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	defer file.Close()

	var failures []Failure
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if f, ok := ParseFailure(scanner.Text()); ok {
			failures = append(failures, f)
		}
	}

	return failures, scanner.Err()
}

func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
