package linkedin

import (
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

func TestHTTPFetcherFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("expected user agent header")
		}
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer gz.Close()
		_, _ = gz.Write([]byte(`<html><body><h1>Jane Doe</h1><p>Staff Engineer</p></body></html>`))
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(zap.NewNop(), 0)
	page, err := fetcher.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Name != "Jane Doe" {
		t.Fatalf("unexpected name %q", page.Name)
	}
	if page.Text != "Jane DoeStaff Engineer" && page.Text != "Jane Doe\nStaff Engineer" {
		t.Fatalf("unexpected text %q", page.Text)
	}
}

func TestHTTPFetcherMarkdown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1>Jane Doe</h1><h2>Skills</h2><ul><li>Go</li></ul></body></html>`))
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(zap.NewNop(), 0)
	fetcher.Markdown = true

	page, err := fetcher.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Name != "Jane Doe" {
		t.Fatalf("unexpected name %q", page.Name)
	}
	if !strings.Contains(page.Text, "## Skills") {
		t.Fatalf("expected markdown headings in text, got %q", page.Text)
	}
}

func TestHTTPFetcherRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(zap.NewNop(), 1)
	fetcher.RetryDelay = 0

	_, err := fetcher.Fetch(context.Background(), srv.URL)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.Attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", fetchErr.Attempts)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 requests, got %d", calls.Load())
	}
}

func TestHTTPFetcherCancelled(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := NewHTTPFetcher(zap.NewNop(), 3)
	_, err := fetcher.Fetch(ctx, srv.URL)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no requests, got %d", calls.Load())
	}
}
