package linkedin

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestSelectorChainFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		html   string
		expect string
		err    error
	}{
		{
			name:   "h1 wins",
			html:   `<html><head><title>Other | LinkedIn</title></head><body><h1> Jane Doe </h1></body></html>`,
			expect: "Jane Doe",
		},
		{
			name:   "falls back to heading class",
			html:   `<html><body><h1> </h1><div class="text-heading-xlarge">John Roe</div></body></html>`,
			expect: "John Roe",
		},
		{
			name:   "falls back to title",
			html:   `<html><head><title>Ann Smith | LinkedIn</title></head><body></body></html>`,
			expect: "Ann Smith",
		},
		{
			name: "exhausted",
			html: `<html><head><title>LinkedIn</title></head><body><p>text</p></body></html>`,
			err:  ErrNoMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(tt.html))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}

			got, err := NameSelectors.First(doc)
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected error %v, got %v", tt.err, err)
			}
			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestParsePage(t *testing.T) {
	t.Parallel()

	html := `<html><body><h1>Jane</h1><script>var x = 1;</script>
		<section>  Senior   Engineer  </section>

		<p>Go, Kubernetes</p></body></html>`

	page, err := ParsePage("https://www.linkedin.com/in/jane", html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Name != "Jane" {
		t.Fatalf("unexpected name %q", page.Name)
	}
	if strings.Contains(page.Text, "var x") {
		t.Fatalf("script content leaked into text: %q", page.Text)
	}
	if page.Text != "Jane\nSenior Engineer\nGo, Kubernetes" {
		t.Fatalf("unexpected text %q", page.Text)
	}

	if _, err := ParsePage("u", `<html><body>   </body></html>`); !errors.Is(err, ErrEmptyPage) {
		t.Fatalf("expected ErrEmptyPage, got %v", err)
	}
}

func TestMarkdownText(t *testing.T) {
	t.Parallel()

	html := `<html><body><h1>Jane</h1><script>var x = 1;</script>
		<h2>Experience</h2><ul><li>Staff Engineer at Acme</li></ul></body></html>`

	md, err := MarkdownText(html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(md, "var x") {
		t.Fatalf("script content leaked into markdown: %q", md)
	}
	for _, want := range []string{"# Jane", "## Experience", "Staff Engineer at Acme"} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in markdown %q", want, md)
		}
	}

	if _, err := MarkdownText(`<html><body><script>x()</script></body></html>`); !errors.Is(err, ErrEmptyPage) {
		t.Fatalf("expected ErrEmptyPage, got %v", err)
	}
}
