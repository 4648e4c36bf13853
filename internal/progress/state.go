// Package progress persists the resumable state of a batch run.
package progress

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownURL is returned when completing a URL that is not part of the batch.
var ErrUnknownURL = errors.New("url is not part of the batch")

// Params are the batch parameters fixed when the batch is created.
type Params struct {
	SearchTerm     string
	JobDescription string
	ProfileLimit   int
	MinExperience  float64
}

// BatchState is the ordered work list of a batch and the subset already completed.
// Completed URLs only ever grow and always form a subset of all URLs.
type BatchState struct {
	RunID          string
	SearchTerm     string
	JobDescription string
	ProfileLimit   int
	MinExperience  float64
	StartedAt      time.Time
	UpdatedAt      time.Time

	all       []string
	completed []string
	done      map[string]struct{}
}

// New creates a fresh batch. urls are deduplicated preserving first-seen order.
func New(params Params, urls []string) *BatchState {
	now := time.Now().UTC()
	s := &BatchState{
		RunID:          uuid.NewString(),
		SearchTerm:     params.SearchTerm,
		JobDescription: params.JobDescription,
		ProfileLimit:   params.ProfileLimit,
		MinExperience:  params.MinExperience,
		StartedAt:      now,
		UpdatedAt:      now,
		done:           map[string]struct{}{},
	}
	s.all = dedupe(urls)
	return s
}

// Params returns the creation parameters of the batch.
func (s *BatchState) Params() Params {
	return Params{
		SearchTerm:     s.SearchTerm,
		JobDescription: s.JobDescription,
		ProfileLimit:   s.ProfileLimit,
		MinExperience:  s.MinExperience,
	}
}

// All returns every URL of the batch in order.
func (s *BatchState) All() []string { return slices.Clone(s.all) }

// Completed returns completed URLs in completion order.
func (s *BatchState) Completed() []string { return slices.Clone(s.completed) }

// Remaining returns the URLs not yet completed, in batch order.
func (s *BatchState) Remaining() []string {
	remaining := make([]string, 0, len(s.all)-len(s.completed))
	for _, u := range s.all {
		if _, ok := s.done[u]; !ok {
			remaining = append(remaining, u)
		}
	}
	return remaining
}

// Total is the number of URLs in the batch.
func (s *BatchState) Total() int { return len(s.all) }

// IsCompleted reports whether url was already processed.
func (s *BatchState) IsCompleted(url string) bool {
	_, ok := s.done[url]
	return ok
}

// Finished reports whether every URL was processed.
func (s *BatchState) Finished() bool { return len(s.completed) == len(s.all) }

// MarkCompleted records url as processed. Completing a URL twice is a no-op.
func (s *BatchState) MarkCompleted(url string) error {
	if _, ok := s.done[url]; ok {
		return nil
	}
	if !slices.Contains(s.all, url) {
		return fmt.Errorf("%w: %s", ErrUnknownURL, url)
	}

	s.done[url] = struct{}{}
	s.completed = append(s.completed, url)
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Snapshot is the persisted form of a BatchState.
type Snapshot struct {
	RunID          string    `json:"run_id,omitempty"`
	SearchTerm     string    `json:"search_term"`
	JobDescription string    `json:"job_description"`
	ProfileLimit   int       `json:"profile_limit"`
	MinExperience  float64   `json:"min_experience"`
	TotalURLs      int       `json:"total_urls"`
	CompletedURLs  []string  `json:"completed_urls"`
	RemainingURLs  []string  `json:"remaining_urls"`
	StartedAt      time.Time `json:"started_at,omitzero"`
	UpdatedAt      time.Time `json:"updated_at,omitzero"`
}

// Snapshot captures the state for persistence.
func (s *BatchState) Snapshot() Snapshot {
	return Snapshot{
		RunID:          s.RunID,
		SearchTerm:     s.SearchTerm,
		JobDescription: s.JobDescription,
		ProfileLimit:   s.ProfileLimit,
		MinExperience:  s.MinExperience,
		TotalURLs:      len(s.all),
		CompletedURLs:  s.Completed(),
		RemainingURLs:  s.Remaining(),
		StartedAt:      s.StartedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// Restore rebuilds a BatchState from a snapshot. The URL order becomes
// completed URLs followed by remaining ones.
func Restore(snap Snapshot) (*BatchState, error) {
	if strings.TrimSpace(snap.SearchTerm) == "" && len(snap.CompletedURLs)+len(snap.RemainingURLs) == 0 {
		return nil, errors.New("snapshot is empty")
	}

	completed := dedupe(snap.CompletedURLs)
	s := &BatchState{
		RunID:          snap.RunID,
		SearchTerm:     snap.SearchTerm,
		JobDescription: snap.JobDescription,
		ProfileLimit:   snap.ProfileLimit,
		MinExperience:  snap.MinExperience,
		StartedAt:      snap.StartedAt,
		UpdatedAt:      snap.UpdatedAt,
		done:           make(map[string]struct{}, len(completed)),
	}
	if s.RunID == "" {
		s.RunID = uuid.NewString()
	}

	s.all = dedupe(append(slices.Clone(completed), snap.RemainingURLs...))
	for _, u := range completed {
		s.done[u] = struct{}{}
	}
	s.completed = completed

	return s, nil
}

func dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	result := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		result = append(result, u)
	}
	return result
}
