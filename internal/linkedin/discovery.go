package linkedin

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	searchPath = "/search/results/people/"

	DefaultMaxPages    = 10
	DefaultPerPage     = 10
	DefaultPageDelay   = 4 * time.Second
	discoveryRateBurst = 1
)

// HTMLSource returns the markup of an arbitrary page.
type HTMLSource interface {
	HTML(ctx context.Context, url string) (string, error)
}

// DiscoveryConfig controls how many search result pages are walked.
type DiscoveryConfig struct {
	MaxPages  int           `mapstructure:"max-pages"`
	PerPage   int           `mapstructure:"per-page"`
	PageDelay time.Duration `mapstructure:"page-delay"`
}

// Discoverer collects profile URLs from people-search result pages.
type Discoverer struct {
	source  HTMLSource
	cfg     DiscoveryConfig
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewDiscoverer(source HTMLSource, cfg DiscoveryConfig, logger *zap.Logger) *Discoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = DefaultPerPage
	}

	limit := rate.Inf
	if cfg.PageDelay > 0 {
		limit = rate.Every(cfg.PageDelay)
	}

	return &Discoverer{
		source:  source,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, discoveryRateBurst),
		logger:  logger,
	}
}

// SearchURL builds the people-search URL for the given 1-based page.
func SearchURL(term string, page int) string {
	q := url.Values{}
	q.Set("keywords", term)
	q.Set("origin", "SWITCH_SEARCH_VERTICAL")
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	return BaseURL + searchPath + "?" + q.Encode()
}

// PagesFor returns how many result pages are needed to collect limit profiles.
func (d *Discoverer) PagesFor(limit int) int {
	return min(d.cfg.MaxPages, limit/d.cfg.PerPage+1)
}

// Discover walks search result pages until limit unique profile URLs are
// collected, a page yields nothing new, or the page budget is spent.
func (d *Discoverer) Discover(ctx context.Context, term string, limit int) ([]string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("search term is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("profile limit must be positive, got %d", limit)
	}

	pages := d.PagesFor(limit)
	d.logger.Info("collecting profile urls", zap.String("search_term", term), zap.Int("pages", pages))

	var collected []string
	for page := 1; page <= pages; page++ {
		if err := d.limiter.Wait(ctx); err != nil {
			return UniqueURLs(collected, limit), err
		}

		html, err := d.source.HTML(ctx, SearchURL(term, page))
		if err != nil {
			if ctx.Err() != nil {
				return UniqueURLs(collected, limit), ctx.Err()
			}
			d.logger.Warn("search page failed", zap.Int("page", page), zap.Error(err))
			break
		}

		links, err := ExtractProfileLinks(html)
		if err != nil {
			d.logger.Warn("parsing search page failed", zap.Int("page", page), zap.Error(err))
			break
		}

		before := len(UniqueURLs(collected, 0))
		collected = append(collected, links...)
		after := len(UniqueURLs(collected, 0))

		d.logger.Info("search page collected",
			zap.Int("page", page),
			zap.Int("found", after-before),
			zap.Int("total", after),
		)

		if after == before {
			d.logger.Info("reached end of search results early", zap.Int("page", page))
			break
		}
		if after >= limit {
			break
		}
	}

	urls := UniqueURLs(collected, limit)
	d.logger.Info("profile urls collected", zap.Int("count", len(urls)))
	return urls, nil
}

// ExtractProfileLinks returns every profile link found in the markup, in document order.
func ExtractProfileLinks(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if normalized, ok := NormalizeProfileURL(href); ok {
			links = append(links, normalized)
		}
	})

	return links, nil
}

// ReadURLs reads one URL per line. Blank lines and lines starting with # are skipped.
func ReadURLs(r io.Reader, limit int) ([]string, error) {
	var links []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		links = append(links, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read urls: %w", err)
	}

	return UniqueURLs(links, limit), nil
}
