package linkedin

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type stubSource struct {
	pages    map[int]string
	requests []string
}

func (s *stubSource) HTML(_ context.Context, u string) (string, error) {
	s.requests = append(s.requests, u)
	page := 1
	if idx := strings.Index(u, "page="); idx >= 0 {
		fmt.Sscanf(u[idx+len("page="):], "%d", &page)
	}
	html, ok := s.pages[page]
	if !ok {
		return "", fmt.Errorf("no page %d", page)
	}
	return html, nil
}

func resultsPage(slugs ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, slug := range slugs {
		fmt.Fprintf(&b, `<a href="https://www.linkedin.com/in/%s/?trk=search">%s</a>`, slug, slug)
	}
	b.WriteString(`<a href="/company/acme">acme</a></body></html>`)
	return b.String()
}

func TestDiscoverStopsWhenPageAddsNothing(t *testing.T) {
	source := &stubSource{pages: map[int]string{
		1: resultsPage("a", "b"),
		2: resultsPage("b", "a"),
		3: resultsPage("c"),
	}}

	d := NewDiscoverer(source, DiscoveryConfig{MaxPages: 5, PerPage: 2}, zap.NewNop())
	urls, err := d.Discover(context.Background(), "go engineer", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expect := []string{"https://www.linkedin.com/in/a", "https://www.linkedin.com/in/b"}
	if !reflect.DeepEqual(urls, expect) {
		t.Fatalf("unexpected urls: %v", urls)
	}
	if len(source.requests) != 2 {
		t.Fatalf("expected 2 page requests, got %d", len(source.requests))
	}
}

func TestDiscoverTruncatesToLimit(t *testing.T) {
	source := &stubSource{pages: map[int]string{
		1: resultsPage("a", "b", "c"),
		2: resultsPage("d", "e"),
	}}

	d := NewDiscoverer(source, DiscoveryConfig{MaxPages: 10, PerPage: 3}, zap.NewNop())
	urls, err := d.Discover(context.Background(), "sre", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 4 || urls[3] != "https://www.linkedin.com/in/d" {
		t.Fatalf("unexpected urls: %v", urls)
	}
}

func TestDiscoverValidatesInput(t *testing.T) {
	d := NewDiscoverer(&stubSource{}, DiscoveryConfig{}, nil)
	if _, err := d.Discover(context.Background(), " ", 5); err == nil {
		t.Fatalf("expected error for empty term")
	}
	if _, err := d.Discover(context.Background(), "go", 0); err == nil {
		t.Fatalf("expected error for non-positive limit")
	}
}

func TestPagesFor(t *testing.T) {
	d := NewDiscoverer(&stubSource{}, DiscoveryConfig{}, nil)
	if got := d.PagesFor(25); got != 3 {
		t.Fatalf("expected 3 pages, got %d", got)
	}
	if got := d.PagesFor(500); got != DefaultMaxPages {
		t.Fatalf("expected page cap, got %d", got)
	}
}

func TestReadURLs(t *testing.T) {
	input := `
# seed list
https://www.linkedin.com/in/a/
https://www.linkedin.com/in/a?x=1
not a url
https://www.linkedin.com/in/b
`
	urls, err := ReadURLs(strings.NewReader(input), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expect := []string{"https://www.linkedin.com/in/a", "https://www.linkedin.com/in/b"}
	if !reflect.DeepEqual(urls, expect) {
		t.Fatalf("unexpected urls: %v", urls)
	}
}
