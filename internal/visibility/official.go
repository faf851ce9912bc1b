package visibility

import (
	"strings"

	"github.com/virshi/ai-visibility/internal/models"
)

// Classifier decides whether a cited URL belongs to the project's official
// web presence. Matching is a substring check over normalized strings, so an
// entry "example.com" matches "shop.example.com/page" — and, as a known
// imprecision kept for parity with the rest of the product, would also match
// an unrelated "notexample.com". Stored is_official flags are never trusted;
// classification is always recomputed here.
type Classifier struct {
	entries []string
}

// NewClassifier builds a classifier from raw whitelist entries. Empty entries
// are dropped.
func NewClassifier(whitelist []string) *Classifier {
	c := &Classifier{}
	for _, w := range whitelist {
		if cleaned := cleanDomain(w); cleaned != "" {
			c.entries = append(c.entries, cleaned)
		}
	}
	return c
}

// NewClassifierFromAssets builds a classifier from official_assets rows.
func NewClassifierFromAssets(assets []models.OfficialAsset) *Classifier {
	entries := make([]string, 0, len(assets))
	for _, a := range assets {
		entries = append(entries, a.DomainOrURL)
	}
	return NewClassifier(entries)
}

// IsOfficial reports whether any whitelist entry occurs in the URL, after
// both sides are stripped of scheme, "www." prefix and trailing slash.
func (c *Classifier) IsOfficial(url string) bool {
	u := cleanDomain(url)
	if u == "" {
		return false
	}
	for _, e := range c.entries {
		if strings.Contains(u, e) {
			return true
		}
	}
	return false
}

// Classify returns the sources with IsOfficial recomputed against the
// whitelist and Domain derived from the URL when absent.
func (c *Classifier) Classify(sources []models.ExtractedSource) []models.ExtractedSource {
	out := make([]models.ExtractedSource, len(sources))
	for i, s := range sources {
		s.IsOfficial = c.IsOfficial(s.URL)
		if s.Domain == "" {
			s.Domain = DomainOf(s.URL)
		}
		out[i] = s
	}
	return out
}

// CountOfficial returns how many of the sources classify as official.
func (c *Classifier) CountOfficial(sources []models.ExtractedSource) int {
	n := 0
	for _, s := range sources {
		if c.IsOfficial(s.URL) {
			n++
		}
	}
	return n
}

// DomainOf extracts the host part of a URL without net/url's strictness;
// extracted citations are frequently malformed.
func DomainOf(rawURL string) string {
	u := cleanDomain(rawURL)
	if u == "" {
		return "unknown"
	}
	if idx := strings.IndexAny(u, "/?#"); idx >= 0 {
		u = u[:idx]
	}
	return u
}

func cleanDomain(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "www.")
	return strings.TrimSuffix(s, "/")
}
