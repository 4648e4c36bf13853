package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spigell/talent-scout/internal/ai"
	"github.com/spigell/talent-scout/internal/ai/gemini"
	"github.com/spigell/talent-scout/internal/filtering"
	"github.com/spigell/talent-scout/internal/linkedin"
	"github.com/spigell/talent-scout/internal/logger"
	"github.com/spigell/talent-scout/internal/pipeline"
	"github.com/spigell/talent-scout/internal/progress"
	"github.com/spigell/talent-scout/internal/secrets"

	"go.uber.org/zap"
)

const (
	FetcherBrowser = "browser"
	FetcherHTTP    = "http"
)

// pageSource renders profile pages and search result pages.
type pageSource interface {
	pipeline.PageFetcher
	linkedin.HTMLSource
	Close()
}

// httpSource gives the plain HTTP fetcher the same lifecycle as the browser.
type httpSource struct {
	*linkedin.HTTPFetcher
}

func (httpSource) Close() {}

func newFetcher(ctx context.Context, config *Config, log *zap.Logger) (pageSource, error) {
	cfg := config.Fetcher
	maxRetries := config.Pipeline.MaxRetriesPerProfile

	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "", FetcherBrowser:
		browserCfg := cfg.Browser
		browserCfg.MaxRetries = maxRetries
		fetcher, err := linkedin.NewBrowserFetcher(ctx, browserCfg, log.With(zap.String("fetcher", FetcherBrowser)))
		if err != nil {
			return nil, err
		}
		return fetcher, nil
	case FetcherHTTP:
		fetcher := linkedin.NewHTTPFetcher(log.With(zap.String("fetcher", FetcherHTTP)), maxRetries)
		fetcher.Markdown = cfg.Markdown
		if cfg.UserAgent != "" {
			fetcher.UserAgent = cfg.UserAgent
		}
		if cfg.CookieFile != "" || os.Getenv("LINKEDIN_COOKIE") != "" {
			cookie, err := secrets.Load(secrets.Source{
				Name: "session cookie",
				File: cfg.CookieFile,
				Env:  "LINKEDIN_COOKIE",
			})
			if err != nil {
				return nil, err
			}
			fetcher.Cookie = cookie
		}
		return httpSource{fetcher}, nil
	default:
		return nil, fmt.Errorf("unsupported fetcher kind: %s", cfg.Kind)
	}
}

func newAI(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Extractor, ai.Matcher, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != gemini.Provider {
		return nil, nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	genLogger := logger.WithCommonFields(log, gemini.Provider, cfg.Gemini.Model).With(
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, *cfg.Gemini, genLogger)
	if err != nil {
		return nil, nil, err
	}

	aiLogger := logger.WithCommonFields(log, gemini.Provider, generator.Model())
	extractor := gemini.NewProfileExtractor(generator, cfg.MaxInputChars, cfg.Gemini.MaxLogLength, aiLogger.With(zap.String(logger.FieldStage, "extract")))
	matcher := gemini.NewCandidateMatcher(generator, cfg.Gemini.MaxLogLength, aiLogger.With(zap.String(logger.FieldStage, "match")))

	return extractor, matcher, nil
}

// newGates builds the optional gates that run after the experience gate.
func newGates(cfg *FiltersConfig) []filtering.Filter {
	gates := []filtering.Filter{
		filtering.NewExcludedCompanies(cfg.ExcludeCompanies),
		filtering.NewOpenToWork(cfg.OpenToWorkOnly),
	}
	for _, name := range cfg.Disable {
		filtering.DisableByName(gates, strings.TrimSpace(name), "disabled by configuration")
	}
	return gates
}

func openStore(config *Config, log *zap.Logger) (progress.Store, error) {
	cfg := config.progressConfig()
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create progress directory %s: %w", dir, err)
		}
	}

	log.Debug("opening progress store",
		zap.String("backend", cfg.Backend),
		zap.String("path", cfg.Path),
	)
	return progress.Open(cfg, log)
}

func closeStore(store progress.Store, log *zap.Logger) {
	closer, ok := store.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		log.Warn("closing progress store", zap.Error(err))
	}
}
