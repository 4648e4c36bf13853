package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/spigell/talent-scout/internal/linkedin"
	"github.com/spigell/talent-scout/internal/progress"
)

// fakeFetcher returns the URL itself as page text.
type fakeFetcher struct {
	errs    map[string]error
	onFetch func(url string)
	fetched []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*linkedin.Page, error) {
	f.fetched = append(f.fetched, url)
	if f.onFetch != nil {
		f.onFetch(url)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.errs[url]; err != nil {
		return nil, err
	}
	return &linkedin.Page{URL: url, Name: "Page Name", Text: url}, nil
}

type fakeExtractor struct {
	years map[string]float64
	names map[string]string
	errs  map[string]error
}

func (f *fakeExtractor) Extract(_ context.Context, text string) (*linkedin.Profile, error) {
	if err := f.errs[text]; err != nil {
		return nil, err
	}
	return &linkedin.Profile{
		Name:                 f.names[text],
		TotalYearsExperience: f.years[text],
		Skills:               []string{"Go"},
	}, nil
}

type fakeMatcher struct {
	scores  map[string]float64
	errs    map[string]error
	onMatch func(url string)
	jds     []string
}

func (f *fakeMatcher) Match(_ context.Context, p *linkedin.Profile, jd string) (*linkedin.MatchRecord, error) {
	f.jds = append(f.jds, jd)
	if f.onMatch != nil {
		f.onMatch(p.URL)
	}
	if err := f.errs[p.URL]; err != nil {
		return nil, err
	}
	return &linkedin.MatchRecord{
		MatchScore:        f.scores[p.URL],
		MatchingSkills:    []string{"Go"},
		OverallAssessment: "ok",
	}, nil
}

// memoryStore keeps every saved snapshot so tests can inspect the history.
type memoryStore struct {
	mu        sync.Mutex
	snapshots []progress.Snapshot
	cleared   int
	saveErr   error
	failAfter int
}

func (s *memoryStore) Load(context.Context) (*progress.BatchState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.snapshots) == 0 || s.cleared > 0 {
		return nil, nil
	}
	return progress.Restore(s.snapshots[len(s.snapshots)-1])
}

func (s *memoryStore) Save(_ context.Context, state *progress.BatchState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil && len(s.snapshots) >= s.failAfter {
		return s.saveErr
	}
	s.snapshots = append(s.snapshots, state.Snapshot())
	return nil
}

func (s *memoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared++
	return nil
}

func (s *memoryStore) last() progress.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots[len(s.snapshots)-1]
}

var errBoom = errors.New("boom")

func noWait(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func fixedDelay(lo, _ time.Duration) time.Duration { return lo }
