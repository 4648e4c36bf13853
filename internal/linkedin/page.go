package linkedin

import (
	"errors"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

var (
	// ErrEmptyPage is returned when a page rendered without any readable text.
	ErrEmptyPage = errors.New("page has no readable content")
	// ErrNoMatch is returned when no strategy of a SelectorChain yields a value.
	ErrNoMatch = errors.New("no selector matched")
)

// Page is the visible content of a fetched profile page.
type Page struct {
	URL  string
	Name string
	Text string
	HTML string
}

// FetchError describes a failed fetch after all attempts were exhausted.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SelectorChain is an ordered list of CSS selectors. The first selector with
// non-empty text wins.
type SelectorChain []string

// NameSelectors locate the display name on a profile page.
var NameSelectors = SelectorChain{"h1", ".text-heading-xlarge", "title"}

// First returns the trimmed text of the first matching selector.
func (c SelectorChain) First(doc *goquery.Document) (string, error) {
	for _, selector := range c {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if selector == "title" {
			text = titleName(text)
		}
		if text != "" {
			return text, nil
		}
	}
	return "", ErrNoMatch
}

// titleName turns "Jane Doe | LinkedIn" into "Jane Doe".
func titleName(title string) string {
	if idx := strings.Index(title, "|"); idx >= 0 {
		title = title[:idx]
	}
	title = strings.TrimSpace(title)
	if strings.EqualFold(title, "linkedin") {
		return ""
	}
	return title
}

// ParsePage builds a Page from raw HTML.
func ParsePage(url, html string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	return pageFromDocument(url, html, doc, "")
}

func pageFromDocument(url, html string, doc *goquery.Document, text string) (*Page, error) {
	if text == "" {
		text = collapseSpace(cleanBody(doc).Text())
	}
	if text == "" {
		return nil, ErrEmptyPage
	}

	name, err := NameSelectors.First(doc)
	if err != nil {
		name = UnknownName
	}

	return &Page{URL: url, Name: name, Text: text, HTML: html}, nil
}

func collapseSpace(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func cleanBody(doc *goquery.Document) *goquery.Selection {
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, svg, iframe").Remove()
	return body
}

// MarkdownText renders the readable part of the page as markdown, keeping
// headings and lists that plain text flattens.
func MarkdownText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	body, err := cleanBody(doc).Html()
	if err != nil {
		return "", fmt.Errorf("render body: %w", err)
	}

	md, err := htmltomarkdown.ConvertString(body)
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}

	md = strings.TrimSpace(md)
	if md == "" {
		return "", ErrEmptyPage
	}
	return md, nil
}
