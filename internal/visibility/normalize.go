// Package visibility implements the brand-visibility aggregation core:
// mention normalization, snapshot selection, SOV and sentiment rollups,
// competitor ranking and official-source classification. Everything here is
// pure computation over rows fetched elsewhere; empty input yields zero
// metrics, never an error.
package visibility

import (
	"strings"
	"time"

	"github.com/virshi/ai-visibility/internal/models"
)

// Canonical provider display names.
const (
	ProviderChatGPT    = "Chat GPT"
	ProviderGemini     = "Gemini"
	ProviderPerplexity = "Perplexity"
	ProviderOther      = "Other"
)

// Sentiment buckets.
const (
	SentimentPositive = "Positive"
	SentimentNeutral  = "Neutral"
	SentimentNegative = "Negative"
)

// Providers lists the three supported LLM providers in display order.
var Providers = []string{ProviderChatGPT, ProviderGemini, ProviderPerplexity}

// NormalizeProvider maps a raw provider/model identifier from the extraction
// pipeline ("gpt-4o", "gemini-1.5-pro", "perplexity", ...) to its canonical
// display name.
func NormalizeProvider(raw string) string {
	p := strings.ToLower(raw)
	switch {
	case strings.Contains(p, "gpt") || strings.Contains(p, "openai"):
		return ProviderChatGPT
	case strings.Contains(p, "gemini") || strings.Contains(p, "google"):
		return ProviderGemini
	case strings.Contains(p, "perplexity"):
		return ProviderPerplexity
	default:
		return ProviderOther
	}
}

// NormalizeSentiment classifies free-text sentiment (the pipeline emits it in
// Ukrainian or English) into one of the three buckets. Anything unrecognized
// is Neutral.
func NormalizeSentiment(raw string) string {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "поз") || strings.Contains(s, "pos"):
		return SentimentPositive
	case strings.Contains(s, "нег") || strings.Contains(s, "neg"):
		return SentimentNegative
	case strings.Contains(s, "ней") || strings.Contains(s, "neu"):
		return SentimentNeutral
	default:
		return SentimentNeutral
	}
}

// truthy interprets the boolean-ish is_my_brand values the pipeline writes.
func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "t", "yes", "on":
		return true
	}
	return false
}

// IsTarget reports whether a mention belongs to the project's own brand:
// either the pipeline flagged it, or the names contain each other
// (case-insensitive, both directions). An empty target name never matches by
// substring, only the explicit flag can mark target then.
func IsTarget(m models.BrandMention, targetBrand string) bool {
	if truthy(m.IsMyBrand) {
		return true
	}

	target := strings.ToLower(strings.TrimSpace(targetBrand))
	name := strings.ToLower(strings.TrimSpace(m.BrandName))
	if target == "" || name == "" {
		return false
	}

	return strings.Contains(name, target) || strings.Contains(target, name)
}

// Row is one normalized brand mention joined with its scan's metadata. The
// aggregation functions all operate on slices of Row.
type Row struct {
	ScanID    string
	KeywordID string
	Provider  string // canonical display name
	CreatedAt time.Time
	Brand     string
	Count     int
	Rank      int    // 0 = unranked
	Sentiment string // canonical bucket
	IsTarget  bool
}

// Join flattens scan results and their mentions into normalized rows.
// Mentions whose scan is not in the slice are dropped; scans without mentions
// contribute no rows.
func Join(scans []models.ScanResult, mentions []models.BrandMention, targetBrand string) []Row {
	byID := make(map[string]models.ScanResult, len(scans))
	for _, s := range scans {
		byID[s.ID] = s
	}

	rows := make([]Row, 0, len(mentions))
	for _, m := range mentions {
		scan, ok := byID[m.ScanResultID]
		if !ok {
			continue
		}
		rows = append(rows, Row{
			ScanID:    scan.ID,
			KeywordID: scan.KeywordID,
			Provider:  NormalizeProvider(scan.Provider),
			CreatedAt: scan.CreatedAt,
			Brand:     strings.TrimSpace(m.BrandName),
			Count:     m.MentionCount,
			Rank:      m.RankPosition,
			Sentiment: NormalizeSentiment(m.SentimentScore),
			IsTarget:  IsTarget(m, targetBrand),
		})
	}

	return rows
}
