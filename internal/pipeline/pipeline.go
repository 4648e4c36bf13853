// Package pipeline drives a batch of profile URLs through fetch, extraction,
// filtering and matching, persisting progress after every item.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spigell/talent-scout/internal/ai"
	"github.com/spigell/talent-scout/internal/filtering"
	"github.com/spigell/talent-scout/internal/linkedin"
	"github.com/spigell/talent-scout/internal/logger"
	"github.com/spigell/talent-scout/internal/output"
	"github.com/spigell/talent-scout/internal/progress"
	"github.com/spigell/talent-scout/internal/utils"
	"go.uber.org/zap"
)

var (
	// ErrPersistence means progress or results could not be written. The batch stops.
	ErrPersistence = errors.New("persistence failure")
	// ErrInterrupted means the run was cancelled. Progress up to the last completed item is saved.
	ErrInterrupted = errors.New("batch interrupted")
)

// PageFetcher retrieves the visible content of a profile page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*linkedin.Page, error)
}

// Deps are the collaborators of a pipeline.
type Deps struct {
	Fetcher   PageFetcher
	Extractor ai.Extractor
	Matcher   ai.Matcher
	Store     progress.Store
	Sinks     *output.Sinks
	// Gates run after the experience gate, which is always first.
	Gates  []filtering.Filter
	Logger *zap.Logger

	Now   func() time.Time
	Wait  func(ctx context.Context, d time.Duration) error
	Delay func(lo, hi time.Duration) time.Duration
}

// Pipeline processes one batch at a time.
type Pipeline struct {
	cfg       Config
	fetcher   PageFetcher
	extractor ai.Extractor
	matcher   ai.Matcher
	store     progress.Store
	sinks     *output.Sinks
	gates     []filtering.Filter
	logger    *zap.Logger

	now   func() time.Time
	wait  func(ctx context.Context, d time.Duration) error
	delay func(lo, hi time.Duration) time.Duration
}

// New validates cfg and wires the collaborators.
func New(cfg Config, deps Deps) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch {
	case deps.Fetcher == nil:
		return nil, errors.New("page fetcher is required")
	case deps.Extractor == nil:
		return nil, errors.New("extractor is required")
	case deps.Matcher == nil:
		return nil, errors.New("matcher is required")
	case deps.Store == nil:
		return nil, errors.New("progress store is required")
	case deps.Sinks == nil:
		return nil, errors.New("output sinks are required")
	}

	p := &Pipeline{
		cfg:       cfg,
		fetcher:   deps.Fetcher,
		extractor: deps.Extractor,
		matcher:   deps.Matcher,
		store:     deps.Store,
		sinks:     deps.Sinks,
		gates:     deps.Gates,
		logger:    logger.WithFields(deps.Logger),
		now:       deps.Now,
		wait:      deps.Wait,
		delay:     deps.Delay,
	}

	if p.now == nil {
		p.now = func() time.Time { return time.Now().UTC() }
	}
	if p.wait == nil {
		p.wait = utils.WaitFor
	}
	if p.delay == nil {
		p.delay = utils.RandomBetween
	}

	return p, nil
}

// Run processes every remaining URL of state in order. On success the stored
// progress is cleared and a summary is returned. Per-item failures are logged
// to the failure log and never stop the batch.
func (p *Pipeline) Run(ctx context.Context, state *progress.BatchState) (*Summary, error) {
	if state == nil {
		return nil, errors.New("batch state is required")
	}

	log := logger.WithFields(p.logger, logger.RunFields(state.RunID, state.SearchTerm)...)
	gates := append([]filtering.Filter{filtering.NewExperience(state.MinExperience)}, p.gates...)
	filtering.LogStatuses(log, gates)

	remaining := state.Remaining()
	log.Info("starting batch",
		zap.Int("total", state.Total()),
		zap.Int("completed", state.Total()-len(remaining)),
		zap.Int("remaining", len(remaining)),
		zap.Float64("min_experience", state.MinExperience),
		zap.Float64("match_threshold", p.cfg.MatchThreshold),
	)

	var t tally
	for i, url := range remaining {
		if err := ctx.Err(); err != nil {
			return nil, p.interrupt(ctx, state, log, err)
		}

		itemLog := log.With(logger.ItemFields(url, state.Total()-len(remaining)+i+1, state.Total())...)
		itemLog.Info("processing profile")

		if err := p.process(ctx, state, url, gates, &t, itemLog); err != nil {
			if errors.Is(err, ErrInterrupted) {
				return nil, p.interrupt(ctx, state, log, err)
			}
			p.saveBestEffort(ctx, state, log)
			return nil, err
		}

		if i < len(remaining)-1 {
			d := p.delay(p.cfg.DelayMin, p.cfg.DelayMax)
			itemLog.Debug("waiting before next profile", zap.Duration("delay", d))
			if err := p.wait(ctx, d); err != nil {
				return nil, p.interrupt(ctx, state, log, err)
			}
		}
	}

	summary, err := p.summarize(state, &t)
	if err != nil {
		return nil, err
	}

	if err := p.store.Clear(context.WithoutCancel(ctx)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	log.Info("batch completed", summary.Fields()...)
	return summary, nil
}

// process runs the stages for a single URL. Only persistence failures and
// cancellation are returned as errors.
func (p *Pipeline) process(ctx context.Context, state *progress.BatchState, url string, gates []filtering.Filter, t *tally, log *zap.Logger) error {
	page, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return interrupted(ctx)
		}
		log.Warn("fetch failed", zap.String(logger.FieldStage, "fetch"), zap.Error(err))
		return p.fail(ctx, state, url, err.Error(), t)
	}
	if ctx.Err() != nil {
		return interrupted(ctx)
	}

	profile, err := p.extractor.Extract(ctx, page.Text)
	if err != nil {
		if ctx.Err() != nil {
			return interrupted(ctx)
		}
		log.Warn("extraction failed", zap.String(logger.FieldStage, "extract"), zap.Error(err))
		return p.fail(ctx, state, url, "Extraction error: "+err.Error(), t)
	}
	if profile == nil {
		return p.fail(ctx, state, url, "Extraction error: empty result", t)
	}
	if ctx.Err() != nil {
		return interrupted(ctx)
	}

	profile.URL = url
	profile.ScrapedAt = p.now()
	if profile.Name == "" && page.Name != linkedin.UnknownName {
		profile.Name = page.Name
	}
	profile.Normalize()

	if profile.Degraded() {
		log.Warn("extraction degraded to raw output", zap.String(logger.FieldStage, "extract"))
	}

	if err := p.sinks.Profiles.Append(*profile); err != nil {
		return persistence(err)
	}

	log.Info("profile extracted",
		zap.String("name", profile.DisplayName()),
		zap.Float64("years", profile.TotalYearsExperience),
	)

	if decision := filtering.Run(gates, profile); !decision.Pass {
		t.filteredOut++
		log.Info("profile filtered out",
			zap.String(logger.FieldStage, "filter"),
			zap.String("filter", decision.Filter),
			zap.String("reason", decision.Reason),
		)
		return p.complete(ctx, state, url, t)
	}

	if err := p.sinks.PassedFilter.Append(*profile); err != nil {
		return persistence(err)
	}

	record, err := p.matcher.Match(ctx, profile, state.JobDescription)
	if err != nil {
		if ctx.Err() != nil {
			return interrupted(ctx)
		}
		log.Warn("matching failed", zap.String(logger.FieldStage, "match"), zap.Error(err))
		return p.fail(ctx, state, url, "Matching error: "+err.Error(), t)
	}
	if record == nil {
		return p.fail(ctx, state, url, "Matching error: empty result", t)
	}

	record.Stamp(profile, p.now())
	if err := p.sinks.MatchDetails.Append(*record); err != nil {
		return persistence(err)
	}

	matched := record.MatchScore >= p.cfg.MatchThreshold
	if matched {
		if err := p.sinks.Matched.Append(linkedin.NewMatchedProfile(profile, record)); err != nil {
			return persistence(err)
		}
	}

	log.Info("profile matched",
		zap.String(logger.FieldStage, "match"),
		zap.Float64("score", record.MatchScore),
		zap.Bool("above_threshold", matched),
	)

	return p.complete(ctx, state, url, t)
}

func (p *Pipeline) fail(ctx context.Context, state *progress.BatchState, url, message string, t *tally) error {
	if err := p.sinks.Failures.Append(output.Failure{URL: url, Message: message}); err != nil {
		return persistence(err)
	}
	t.failed++
	return p.complete(ctx, state, url, t)
}

func (p *Pipeline) complete(ctx context.Context, state *progress.BatchState, url string, t *tally) error {
	if err := state.MarkCompleted(url); err != nil {
		return err
	}
	t.processed++

	// A completed item must be persisted even when a signal arrives meanwhile.
	if err := p.store.Save(context.WithoutCancel(ctx), state); err != nil {
		return persistence(err)
	}
	return nil
}

func (p *Pipeline) interrupt(ctx context.Context, state *progress.BatchState, log *zap.Logger, cause error) error {
	p.saveBestEffort(ctx, state, log)
	log.Warn("batch interrupted, progress saved",
		zap.Int("completed", len(state.Completed())),
		zap.Int("remaining", len(state.Remaining())),
	)
	if errors.Is(cause, ErrInterrupted) {
		return cause
	}
	return fmt.Errorf("%w: %w", ErrInterrupted, cause)
}

func (p *Pipeline) saveBestEffort(ctx context.Context, state *progress.BatchState, log *zap.Logger) {
	if err := p.store.Save(context.WithoutCancel(ctx), state); err != nil {
		log.Error("saving progress failed", zap.Error(err))
	}
}

func (p *Pipeline) summarize(state *progress.BatchState, t *tally) (*Summary, error) {
	scraped, err := p.sinks.Profiles.Count()
	if err != nil {
		return nil, persistence(err)
	}
	passed, err := p.sinks.PassedFilter.Count()
	if err != nil {
		return nil, persistence(err)
	}
	matched, err := p.sinks.Matched.Count()
	if err != nil {
		return nil, persistence(err)
	}

	return &Summary{
		RunID:        state.RunID,
		Total:        state.Total(),
		Processed:    t.processed,
		Scraped:      scraped,
		FilteredOut:  t.filteredOut,
		PassedFilter: passed,
		Matched:      matched,
		Failed:       t.failed,
		Files:        p.sinks.Files(),
	}, nil
}

func persistence(err error) error {
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}

func interrupted(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrInterrupted, context.Cause(ctx))
}
