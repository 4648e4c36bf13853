package linkedin

import (
	"net/url"
	"strings"
)

const (
	BaseURL     = "https://www.linkedin.com"
	profilePath = "/in/"
)

// NormalizeProfileURL turns a link found on a page into a canonical profile URL.
// Relative links are resolved against BaseURL. The query, fragment and trailing
// slash are dropped. Links that are not profile links are rejected.
func NormalizeProfileURL(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}

	base, _ := url.Parse(BaseURL)
	link, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	abs := base.ResolveReference(link)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	if !strings.HasSuffix(abs.Hostname(), "linkedin.com") {
		return "", false
	}
	if strings.Count(abs.Path, profilePath) != 1 || !strings.HasPrefix(abs.Path, profilePath) {
		return "", false
	}

	abs.RawQuery = ""
	abs.Fragment = ""
	abs.Path = strings.TrimRight(abs.Path, "/")
	abs.RawPath = ""
	if len(abs.Path) <= len(profilePath)-1 {
		return "", false
	}

	return abs.String(), true
}

// UniqueURLs normalizes the given links, drops duplicates keeping first-seen
// order and truncates the result to limit when limit is positive.
func UniqueURLs(links []string, limit int) []string {
	seen := make(map[string]struct{}, len(links))
	result := make([]string, 0, len(links))

	for _, link := range links {
		normalized, ok := NormalizeProfileURL(link)
		if !ok {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)

		if limit > 0 && len(result) == limit {
			break
		}
	}

	return result
}
