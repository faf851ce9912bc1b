package reports

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/virshi/ai-visibility/internal/visibility"
)

func sampleData() ReportData {
	return ReportData{
		BrandName:       "Acme",
		ReportName:      "Acme Visibility Report — March 2026",
		GeneratedAt:     time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
		KeywordCount:    2,
		TotalScans:      12,
		TotalSources:    4,
		OfficialSources: 1,
		Overall: visibility.ProviderStats{
			Provider:   "All",
			SOV:        25.0,
			AvgRank:    2.5,
			MyMentions: 8,
			Sentiment:  visibility.SentimentShares{Positive: 50, Neutral: 25, Negative: 25},
		},
		Providers: []ProviderSection{
			{
				ProviderStats: visibility.ProviderStats{
					Provider:   visibility.ProviderChatGPT,
					SOV:        40.0,
					MyMentions: 5,
					Sentiment:  visibility.SentimentShares{Positive: 100},
				},
				Scans: 6,
			},
			{
				ProviderStats: visibility.ProviderStats{Provider: visibility.ProviderGemini},
				Scans:         0,
			},
		},
		Brands: []visibility.RankedBrand{
			{BrandStat: visibility.BrandStat{Brand: "Globex", Mentions: 20, SOV: 60, DominantSentiment: visibility.SentimentNeutral}, Included: true},
			{BrandStat: visibility.BrandStat{Brand: "Acme", IsTarget: true, Mentions: 8, SOV: 25, DominantSentiment: visibility.SentimentPositive}, Included: true},
			{BrandStat: visibility.BrandStat{Brand: "Initech", Mentions: 1, SOV: 3}, Included: false},
		},
		Keywords: []KeywordSection{
			{
				Keyword: "best crm",
				Stats: visibility.KeywordStats{
					KeywordID:         "k1",
					HasData:           true,
					SOV:               25.0,
					MyMentions:        8,
					AvgRank:           2.5,
					TopCompetitor:     "Globex",
					TopCompetitorHits: 20,
				},
				Sources: []SourceRow{
					{URL: "https://acme.com/pricing", Domain: "acme.com", Official: true},
					{URL: "https://review-site.com/crm", Domain: "review-site.com", Official: false},
				},
			},
			{
				Keyword: "top crm tools",
				Stats:   visibility.KeywordStats{KeywordID: "k2"},
			},
		},
	}
}

func TestGenerate_SelfContainedDocument(t *testing.T) {
	html, err := Generate(sampleData())

	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<style>")
	assert.NotContains(t, html, "<script")
	assert.NotContains(t, html, "href=\"http://cdn")
}

func TestGenerate_HeadlineMetrics(t *testing.T) {
	html, err := Generate(sampleData())

	assert.NoError(t, err)
	assert.Contains(t, html, "Acme Visibility Report")
	assert.Contains(t, html, "25.0%")
	assert.Contains(t, html, "Share of Voice")
	assert.Contains(t, html, "1/4")
	assert.Contains(t, html, "March 15, 2026")
}

func TestGenerate_ProviderSections(t *testing.T) {
	html, err := Generate(sampleData())

	assert.NoError(t, err)
	assert.Contains(t, html, visibility.ProviderChatGPT)
	// Provider with no scans renders the placeholder, not an empty table.
	assert.Contains(t, html, "No scans yet for this provider.")
}

func TestGenerate_BrandTableSkipsExcluded(t *testing.T) {
	html, err := Generate(sampleData())

	assert.NoError(t, err)
	assert.Contains(t, html, "Globex")
	assert.NotContains(t, html, "Initech")
	assert.Contains(t, html, "target-row")
}

func TestGenerate_CitationBadges(t *testing.T) {
	html, err := Generate(sampleData())

	assert.NoError(t, err)
	assert.Contains(t, html, `<span class="badge official">official</span>`)
	assert.Contains(t, html, `<span class="badge external">external</span>`)
	assert.Contains(t, html, "https://acme.com/pricing")
}

func TestGenerate_KeywordWithoutData(t *testing.T) {
	html, err := Generate(sampleData())

	assert.NoError(t, err)
	assert.Contains(t, html, "top crm tools")
	assert.Contains(t, html, "No scan data yet.")
}

func TestGenerate_EmptyReport(t *testing.T) {
	html, err := Generate(ReportData{
		BrandName:   "Acme",
		ReportName:  "Empty",
		GeneratedAt: time.Now().UTC(),
	})

	assert.NoError(t, err)
	assert.Contains(t, html, "Empty")
	assert.Contains(t, html, "0.0%")
}
