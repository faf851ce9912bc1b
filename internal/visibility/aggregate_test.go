package visibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/virshi/ai-visibility/internal/models"
)

func day(d int) time.Time {
	return time.Date(2026, 8, d, 12, 0, 0, 0, time.UTC)
}

func TestNormalizeProvider(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"gpt-4o", ProviderChatGPT},
		{"OpenAI GPT", ProviderChatGPT},
		{"gemini-1.5-pro", ProviderGemini},
		{"google-gemini", ProviderGemini},
		{"perplexity", ProviderPerplexity},
		{"claude-3", ProviderOther},
		{"", ProviderOther},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeProvider(tt.raw))
		})
	}
}

func TestNormalizeSentiment(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"positive", SentimentPositive},
		{"Позитивна", SentimentPositive},
		{"very negative tone", SentimentNegative},
		{"Негативна", SentimentNegative},
		{"neutral", SentimentNeutral},
		{"Нейтральна", SentimentNeutral},
		{"something else entirely", SentimentNeutral},
		{"", SentimentNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeSentiment(tt.raw))
		})
	}
}

func TestIsTarget(t *testing.T) {
	tests := []struct {
		name     string
		mention  models.BrandMention
		target   string
		expected bool
	}{
		{
			name:     "Explicit flag wins regardless of name",
			mention:  models.BrandMention{BrandName: "Globex", IsMyBrand: "true"},
			target:   "Acme",
			expected: true,
		},
		{
			name:     "Flag variants are accepted",
			mention:  models.BrandMention{BrandName: "Globex", IsMyBrand: "YES"},
			target:   "Acme",
			expected: true,
		},
		{
			name:     "Target name contained in mention name",
			mention:  models.BrandMention{BrandName: "Acme Corporation", IsMyBrand: "false"},
			target:   "Acme",
			expected: true,
		},
		{
			name:     "Mention name contained in target name",
			mention:  models.BrandMention{BrandName: "Acme", IsMyBrand: ""},
			target:   "Acme Corporation",
			expected: true,
		},
		{
			name:     "Case-insensitive containment",
			mention:  models.BrandMention{BrandName: "ACME shop", IsMyBrand: "0"},
			target:   "acme",
			expected: true,
		},
		{
			name:     "Unrelated competitor",
			mention:  models.BrandMention{BrandName: "Globex", IsMyBrand: "false"},
			target:   "Acme",
			expected: false,
		},
		{
			name:     "Empty target never matches by name",
			mention:  models.BrandMention{BrandName: "Acme", IsMyBrand: ""},
			target:   "",
			expected: false,
		},
		{
			name:     "Empty target still honors the flag",
			mention:  models.BrandMention{BrandName: "Acme", IsMyBrand: "1"},
			target:   "",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTarget(tt.mention, tt.target))
		})
	}
}

func TestOverview_ZeroMarketYieldsZeroSOV(t *testing.T) {
	scans := []models.ScanResult{
		{ID: "s1", KeywordID: "k1", Provider: "gpt-4o", CreatedAt: day(1)},
	}
	mentions := []models.BrandMention{
		{ScanResultID: "s1", BrandName: "Acme", MentionCount: 0, IsMyBrand: "true"},
		{ScanResultID: "s1", BrandName: "Globex", MentionCount: 0},
	}

	rows := Join(scans, mentions, "Acme")
	stats := Overview(rows, ProviderChatGPT, LatestScanIDs(scans))

	assert.Equal(t, 0.0, stats.SOV)
	assert.Equal(t, 0, stats.MyMentions)
}

func TestOverview_EmptyInputYieldsZeroMetrics(t *testing.T) {
	stats := Overview(nil, ProviderGemini, LatestScanIDs(nil))

	assert.Equal(t, 0.0, stats.SOV)
	assert.Equal(t, 0.0, stats.AvgRank)
	assert.Equal(t, SentimentShares{}, stats.Sentiment)
}

func TestOverview_SentimentSharesSumToHundred(t *testing.T) {
	scans := []models.ScanResult{
		{ID: "s1", KeywordID: "k1", Provider: "perplexity", CreatedAt: day(1)},
	}
	mentions := []models.BrandMention{
		{ScanResultID: "s1", BrandName: "Acme", MentionCount: 3, SentimentScore: "positive", IsMyBrand: "true"},
		{ScanResultID: "s1", BrandName: "Acme Inc", MentionCount: 1, SentimentScore: "negative", IsMyBrand: "true"},
		{ScanResultID: "s1", BrandName: "Acme Shop", MentionCount: 2, SentimentScore: "neutral", IsMyBrand: "true"},
		// Competitor sentiment must not dilute the distribution.
		{ScanResultID: "s1", BrandName: "Globex", MentionCount: 40, SentimentScore: "negative"},
		// Zero-count target mentions do not qualify.
		{ScanResultID: "s1", BrandName: "Acme Labs", MentionCount: 0, SentimentScore: "negative", IsMyBrand: "true"},
	}

	rows := Join(scans, mentions, "Acme")
	stats := Overview(rows, ProviderPerplexity, LatestScanIDs(scans))

	sum := stats.Sentiment.Positive + stats.Sentiment.Neutral + stats.Sentiment.Negative
	assert.InDelta(t, 100.0, sum, 0.001)
	assert.InDelta(t, 33.333, stats.Sentiment.Positive, 0.01)
	assert.InDelta(t, 33.333, stats.Sentiment.Neutral, 0.01)
	assert.InDelta(t, 33.333, stats.Sentiment.Negative, 0.01)
}

func TestOverview_AverageRankExcludesUnranked(t *testing.T) {
	scans := []models.ScanResult{
		{ID: "s1", KeywordID: "k1", Provider: "gpt-4o", CreatedAt: day(1)},
	}
	mentions := []models.BrandMention{
		{ScanResultID: "s1", BrandName: "Acme", MentionCount: 2, RankPosition: 0, IsMyBrand: "true"},
		{ScanResultID: "s1", BrandName: "Acme", MentionCount: 1, RankPosition: 3, IsMyBrand: "true"},
	}

	rows := Join(scans, mentions, "Acme")
	stats := Overview(rows, ProviderChatGPT, LatestScanIDs(scans))

	assert.Equal(t, 3.0, stats.AvgRank)
}

func TestLatestScanIDs_SnapshotDedup(t *testing.T) {
	scans := []models.ScanResult{
		{ID: "old", KeywordID: "k1", Provider: "gpt-4o", CreatedAt: day(1)},
		{ID: "new", KeywordID: "k1", Provider: "gpt-4o", CreatedAt: day(2)},
		{ID: "other-provider", KeywordID: "k1", Provider: "perplexity", CreatedAt: day(1)},
		{ID: "other-keyword", KeywordID: "k2", Provider: "gpt-4o", CreatedAt: day(1)},
	}

	snapshot := LatestScanIDs(scans)

	assert.Contains(t, snapshot, "new")
	assert.NotContains(t, snapshot, "old")
	assert.Contains(t, snapshot, "other-provider")
	assert.Contains(t, snapshot, "other-keyword")
}

func TestOverview_OnlyLatestScanContributes(t *testing.T) {
	scans := []models.ScanResult{
		{ID: "old", KeywordID: "k1", Provider: "gpt-4o", CreatedAt: day(1)},
		{ID: "new", KeywordID: "k1", Provider: "gpt-4o", CreatedAt: day(2)},
	}
	mentions := []models.BrandMention{
		// Old scan: brand dominated. Must be invisible in current state.
		{ScanResultID: "old", BrandName: "Acme", MentionCount: 100, IsMyBrand: "true"},
		{ScanResultID: "new", BrandName: "Acme", MentionCount: 1, IsMyBrand: "true"},
		{ScanResultID: "new", BrandName: "Globex", MentionCount: 3},
	}

	rows := Join(scans, mentions, "Acme")
	stats := Overview(rows, ProviderChatGPT, LatestScanIDs(scans))

	assert.InDelta(t, 25.0, stats.SOV, 0.001)

	// Both scans stay visible in the trend series.
	trend := TrendSeries(rows)
	assert.Len(t, trend, 2)
	assert.InDelta(t, 100.0, trend[0].SOV, 0.001)
	assert.InDelta(t, 25.0, trend[1].SOV, 0.001)
}

func TestOverview_EndToEndScenario(t *testing.T) {
	scans := []models.ScanResult{
		{ID: "s1", KeywordID: "k1", Provider: "gpt-4o", CreatedAt: day(1)},
	}
	mentions := []models.BrandMention{
		{ScanResultID: "s1", BrandName: "Acme", MentionCount: 5, IsMyBrand: "true", SentimentScore: "positive"},
		{ScanResultID: "s1", BrandName: "Globex", MentionCount: 15},
	}

	rows := Join(scans, mentions, "Acme")
	stats := Overview(rows, ProviderChatGPT, LatestScanIDs(scans))

	assert.InDelta(t, 25.0, stats.SOV, 0.001)
	assert.Equal(t, 5, stats.MyMentions)
	assert.InDelta(t, 100.0, stats.Sentiment.Positive, 0.001)
	assert.Equal(t, 0.0, stats.Sentiment.Neutral)
	assert.Equal(t, 0.0, stats.Sentiment.Negative)
}

func TestKeywordOverview(t *testing.T) {
	scans := []models.ScanResult{
		{ID: "s1", KeywordID: "k1", Provider: "gpt-4o", CreatedAt: day(5)},
		{ID: "s2", KeywordID: "k1", Provider: "perplexity", CreatedAt: day(5).Add(2 * time.Hour)},
		// Older run, outside the 24h current slice.
		{ID: "s0", KeywordID: "k1", Provider: "gpt-4o", CreatedAt: day(1)},
	}
	mentions := []models.BrandMention{
		{ScanResultID: "s0", BrandName: "Acme", MentionCount: 50, IsMyBrand: "true"},
		{ScanResultID: "s1", BrandName: "Acme", MentionCount: 2, RankPosition: 2, SentimentScore: "pos", IsMyBrand: "true"},
		{ScanResultID: "s1", BrandName: "Globex", MentionCount: 6},
		{ScanResultID: "s2", BrandName: "Acme", MentionCount: 2, RankPosition: 4, SentimentScore: "pos", IsMyBrand: "true"},
		{ScanResultID: "s2", BrandName: "Initech", MentionCount: 2},
	}
	sources := []models.ExtractedSource{
		{ScanResultID: "s1", URL: "https://shop.acme.com/page"},
		{ScanResultID: "s2", URL: "https://reviews.example.org"},
		{ScanResultID: "s0", URL: "https://acme.com/old"},
	}

	rows := Join(scans, mentions, "Acme")
	classifier := NewClassifier([]string{"acme.com"})
	stats := KeywordOverview(rows, "k1", sources, classifier)

	assert.True(t, stats.HasData)
	assert.Equal(t, 4, stats.MyMentions)
	assert.InDelta(t, 100.0*4/12, stats.SOV, 0.001)
	assert.Equal(t, 3.0, stats.AvgRank)
	assert.Equal(t, SentimentPositive, stats.DominantSentiment)
	assert.Equal(t, "Globex", stats.TopCompetitor)
	assert.Equal(t, 6, stats.TopCompetitorHits)
	// Only the source from the current slice counts, recomputed not stored.
	assert.Equal(t, 1, stats.OfficialSources)
}

func TestKeywordOverview_NoData(t *testing.T) {
	stats := KeywordOverview(nil, "k1", nil, NewClassifier(nil))

	assert.False(t, stats.HasData)
	assert.Equal(t, 0.0, stats.SOV)
}

func TestScanOverview(t *testing.T) {
	scans := []models.ScanResult{
		{ID: "s1", KeywordID: "k1", Provider: "gpt-4o", CreatedAt: day(1)},
	}
	mentions := []models.BrandMention{
		{ScanResultID: "s1", BrandName: "Acme", MentionCount: 4, RankPosition: 2, SentimentScore: "neutral", IsMyBrand: "true"},
		{ScanResultID: "s1", BrandName: "Acme", MentionCount: 6, RankPosition: 5, SentimentScore: "positive", IsMyBrand: "true"},
		{ScanResultID: "s1", BrandName: "Globex", MentionCount: 10},
	}

	rows := Join(scans, mentions, "Acme")
	stats := ScanOverview(rows, "s1")

	assert.Equal(t, 10, stats.MyMentions)
	assert.InDelta(t, 50.0, stats.SOV, 0.001)
	assert.Equal(t, 2, stats.BestRank)
	// Sentiment follows the heaviest target mention row.
	assert.Equal(t, SentimentPositive, stats.Sentiment)
}

func TestScanOverview_BrandAbsent(t *testing.T) {
	scans := []models.ScanResult{
		{ID: "s1", KeywordID: "k1", Provider: "gpt-4o", CreatedAt: day(1)},
	}
	mentions := []models.BrandMention{
		{ScanResultID: "s1", BrandName: "Globex", MentionCount: 10},
	}

	stats := ScanOverview(Join(scans, mentions, "Acme"), "s1")

	assert.Equal(t, 0, stats.MyMentions)
	assert.Equal(t, 0.0, stats.SOV)
	assert.Equal(t, "", stats.Sentiment)
}
