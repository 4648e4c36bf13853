package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spigell/talent-scout/internal/linkedin"
)

const DefaultDir = "output"

// Paths names the files inside the output directory. Empty entries fall back to defaults.
type Paths struct {
	Profiles     string `mapstructure:"profiles"`
	PassedFilter string `mapstructure:"passed-filter"`
	MatchDetails string `mapstructure:"match-details"`
	Matched      string `mapstructure:"matched"`
	Failures     string `mapstructure:"failures"`
}

// DefaultPaths returns the standard file names.
func DefaultPaths() Paths {
	return Paths{
		Profiles:     "all_profiles.json",
		PassedFilter: "filtered_by_experience.json",
		MatchDetails: "match_details.json",
		Matched:      "matched_profiles.json",
		Failures:     "failed_urls.txt",
	}
}

// Sinks groups every log the pipeline writes to.
type Sinks struct {
	Dir          string
	Profiles     *AppendLog[linkedin.Profile]
	PassedFilter *AppendLog[linkedin.Profile]
	MatchDetails *AppendLog[linkedin.MatchRecord]
	Matched      *AppendLog[linkedin.MatchedProfile]
	Failures     *FailureLog
}

// Open creates dir when needed and binds the logs to their files.
func Open(dir string, paths Paths) (*Sinks, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", dir, err)
	}

	defaults := DefaultPaths()
	resolve := func(name, fallback string) string {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fallback
		}
		if filepath.IsAbs(name) {
			return name
		}
		return filepath.Join(dir, name)
	}

	return &Sinks{
		Dir:          dir,
		Profiles:     NewAppendLog[linkedin.Profile](resolve(paths.Profiles, defaults.Profiles)),
		PassedFilter: NewAppendLog[linkedin.Profile](resolve(paths.PassedFilter, defaults.PassedFilter)),
		MatchDetails: NewAppendLog[linkedin.MatchRecord](resolve(paths.MatchDetails, defaults.MatchDetails)),
		Matched:      NewAppendLog[linkedin.MatchedProfile](resolve(paths.Matched, defaults.Matched)),
		Failures:     NewFailureLog(resolve(paths.Failures, defaults.Failures)),
	}, nil
}

// Files lists the backing file of every log, for reporting.
func (s *Sinks) Files() map[string]string {
	return map[string]string{
		"profiles":      s.Profiles.Path(),
		"passed_filter": s.PassedFilter.Path(),
		"match_details": s.MatchDetails.Path(),
		"matched":       s.Matched.Path(),
		"failures":      s.Failures.Path(),
	}
}
