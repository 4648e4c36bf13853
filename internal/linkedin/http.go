package linkedin

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"
	acceptEncoding   = "gzip"
	maxBodyBytes     = 8 << 20
)

// HTTPFetcher downloads pages with a plain HTTP client. It is suited for
// public profile pages and for tests; authenticated pages need BrowserFetcher.
type HTTPFetcher struct {
	HTTPClient *http.Client
	UserAgent  string
	Cookie     string
	MaxRetries int
	RetryDelay time.Duration
	// Markdown replaces the plain page text with a markdown rendering.
	Markdown bool

	logger *zap.Logger
}

func NewHTTPFetcher(logger *zap.Logger, maxRetries int) *HTTPFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPFetcher{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		UserAgent:  defaultUserAgent,
		MaxRetries: maxRetries,
		RetryDelay: defaultRetryDelay,
		logger:     logger,
	}
}

// Fetch returns the readable content of the profile page.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	return retry(ctx, f.logger, url, f.MaxRetries, f.RetryDelay, func(ctx context.Context) (*Page, error) {
		html, err := f.get(ctx, url)
		if err != nil {
			return nil, err
		}
		page, err := ParsePage(url, html)
		if err != nil || !f.Markdown {
			return page, err
		}

		md, err := MarkdownText(html)
		if err != nil {
			f.logger.Debug("markdown rendering failed, keeping plain text", zap.String("url", url), zap.Error(err))
			return page, nil
		}
		page.Text = md
		return page, nil
	})
}

// HTML returns the raw markup of any page, used by URL discovery.
func (f *HTTPFetcher) HTML(ctx context.Context, url string) (string, error) {
	return f.get(ctx, url)
}

func (f *HTTPFetcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	req = f.setHeaders(req)

	f.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(io.LimitReader(reader, maxBodyBytes))
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func (f *HTTPFetcher) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Encoding", acceptEncoding)
	if f.Cookie != "" {
		req.Header.Set("Cookie", f.Cookie)
	}

	return req
}
