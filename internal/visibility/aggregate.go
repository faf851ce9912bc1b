package visibility

import (
	"sort"
	"time"

	"github.com/virshi/ai-visibility/internal/models"
)

// SentimentShares is the target brand's sentiment distribution, normalized so
// the three buckets sum to 100% of the target's own qualifying mentions.
type SentimentShares struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

// ProviderStats holds the current-state metrics for one provider.
type ProviderStats struct {
	Provider   string          `json:"provider"`
	SOV        float64         `json:"sov"`
	AvgRank    float64         `json:"avg_rank"` // 0 = never ranked
	MyMentions int             `json:"my_mentions"`
	Sentiment  SentimentShares `json:"sentiment"`
}

// LatestScanIDs selects the snapshot set: the most recent scan for each
// (keyword, provider) pair. Only these contribute to current-state metrics;
// the full history stays available for trend series.
func LatestScanIDs(scans []models.ScanResult) map[string]struct{} {
	type key struct {
		keyword  string
		provider string
	}

	latest := make(map[key]models.ScanResult)
	for _, s := range scans {
		k := key{s.KeywordID, NormalizeProvider(s.Provider)}
		if cur, ok := latest[k]; !ok || s.CreatedAt.After(cur.CreatedAt) {
			latest[k] = s
		}
	}

	ids := make(map[string]struct{}, len(latest))
	for _, s := range latest {
		ids[s.ID] = struct{}{}
	}
	return ids
}

// Overview computes SOV, average rank and sentiment distribution for one
// provider over the given snapshot set.
func Overview(rows []Row, provider string, snapshot map[string]struct{}) ProviderStats {
	var slice []Row
	for _, r := range rows {
		if r.Provider != provider {
			continue
		}
		if _, ok := snapshot[r.ScanID]; !ok {
			continue
		}
		slice = append(slice, r)
	}

	stats := computeStats(slice)
	stats.Provider = provider
	return stats
}

// computeStats runs the shared SOV/rank/sentiment math over an already
// filtered slice of rows.
func computeStats(rows []Row) ProviderStats {
	var stats ProviderStats

	totalMarket := 0
	myTotal := 0
	rankSum, rankN := 0, 0
	var pos, neu, neg int

	for _, r := range rows {
		totalMarket += r.Count
		if !r.IsTarget {
			continue
		}
		myTotal += r.Count

		if r.Rank > 0 {
			rankSum += r.Rank
			rankN++
		}
		if r.Count > 0 {
			switch r.Sentiment {
			case SentimentPositive:
				pos++
			case SentimentNegative:
				neg++
			default:
				neu++
			}
		}
	}

	stats.MyMentions = myTotal
	if totalMarket > 0 {
		stats.SOV = float64(myTotal) / float64(totalMarket) * 100
	}
	if rankN > 0 {
		stats.AvgRank = float64(rankSum) / float64(rankN)
	}
	if total := pos + neu + neg; total > 0 {
		stats.Sentiment = SentimentShares{
			Positive: float64(pos) / float64(total) * 100,
			Neutral:  float64(neu) / float64(total) * 100,
			Negative: float64(neg) / float64(total) * 100,
		}
	}

	return stats
}

// KeywordStats holds the per-keyword line of the dashboard detail table.
type KeywordStats struct {
	KeywordID         string  `json:"keyword_id"`
	HasData           bool    `json:"has_data"`
	MyMentions        int     `json:"my_mentions"`
	SOV               float64 `json:"sov"`
	AvgRank           float64 `json:"avg_rank"`
	DominantSentiment string  `json:"dominant_sentiment"` // "" when never mentioned
	TopCompetitor     string  `json:"top_competitor"`
	TopCompetitorHits int     `json:"top_competitor_hits"`
	OfficialSources   int     `json:"official_sources"`
}

// KeywordOverview computes current-state metrics for one keyword. The current
// slice is every scan of that keyword within 24 hours of its latest scan, so
// one logical scan run across providers counts as a whole.
func KeywordOverview(rows []Row, keywordID string, sources []models.ExtractedSource, classifier *Classifier) KeywordStats {
	stats := KeywordStats{KeywordID: keywordID}

	var kwRows []Row
	var latest time.Time
	for _, r := range rows {
		if r.KeywordID != keywordID {
			continue
		}
		kwRows = append(kwRows, r)
		if r.CreatedAt.After(latest) {
			latest = r.CreatedAt
		}
	}
	if len(kwRows) == 0 {
		return stats
	}
	stats.HasData = true

	cutoff := latest.Add(-24 * time.Hour)
	var slice []Row
	for _, r := range kwRows {
		if !r.CreatedAt.Before(cutoff) {
			slice = append(slice, r)
		}
	}

	core := computeStats(slice)
	stats.MyMentions = core.MyMentions
	stats.SOV = core.SOV
	stats.AvgRank = core.AvgRank

	var targets []Row
	for _, r := range slice {
		if r.IsTarget {
			targets = append(targets, r)
		}
	}
	stats.DominantSentiment = dominantSentiment(targets)

	// Top competitor by summed mentions in the slice.
	compTotals := make(map[string]int)
	for _, r := range slice {
		if !r.IsTarget {
			compTotals[r.Brand] += r.Count
		}
	}
	for brand, hits := range compTotals {
		if hits > stats.TopCompetitorHits || (hits == stats.TopCompetitorHits && brand < stats.TopCompetitor) {
			stats.TopCompetitor = brand
			stats.TopCompetitorHits = hits
		}
	}

	if classifier != nil {
		inSlice := make(map[string]struct{}, len(slice))
		for _, r := range slice {
			inSlice[r.ScanID] = struct{}{}
		}
		for _, src := range sources {
			if _, ok := inSlice[src.ScanResultID]; !ok {
				continue
			}
			if classifier.IsOfficial(src.URL) {
				stats.OfficialSources++
			}
		}
	}

	return stats
}

// ScanStats holds the metrics of one individual LLM answer.
type ScanStats struct {
	ScanID     string  `json:"scan_id"`
	SOV        float64 `json:"sov"`
	MyMentions int     `json:"my_mentions"`
	BestRank   int     `json:"best_rank"` // 0 = unranked
	Sentiment  string  `json:"sentiment"` // "" when the brand is absent
}

// ScanOverview computes the single-answer breakdown shown in the keyword
// detail tabs. The sentiment shown is the one of the target's heaviest
// mention row in that answer.
func ScanOverview(rows []Row, scanID string) ScanStats {
	stats := ScanStats{ScanID: scanID}

	total := 0
	var targets []Row
	for _, r := range rows {
		if r.ScanID != scanID {
			continue
		}
		total += r.Count
		if r.IsTarget {
			targets = append(targets, r)
		}
	}
	if len(targets) == 0 {
		return stats
	}

	for _, r := range targets {
		stats.MyMentions += r.Count
		if r.Rank > 0 && (stats.BestRank == 0 || r.Rank < stats.BestRank) {
			stats.BestRank = r.Rank
		}
	}
	if total > 0 {
		stats.SOV = float64(stats.MyMentions) / float64(total) * 100
	}
	if stats.MyMentions > 0 {
		top := targets[0]
		for _, r := range targets[1:] {
			if r.Count > top.Count {
				top = r
			}
		}
		stats.Sentiment = top.Sentiment
	}

	return stats
}

// TrendPoint is one day of SOV for one provider.
type TrendPoint struct {
	Date     time.Time `json:"date"`
	Provider string    `json:"provider"`
	SOV      float64   `json:"sov"`
}

// TrendSeries computes the daily SOV time series per provider over the full
// history (no snapshot dedup: trends show every scan).
func TrendSeries(rows []Row) []TrendPoint {
	type key struct {
		day      time.Time
		provider string
	}
	type bucket struct {
		total int
		my    int
	}

	buckets := make(map[key]*bucket)
	for _, r := range rows {
		k := key{r.CreatedAt.UTC().Truncate(24 * time.Hour), r.Provider}
		b := buckets[k]
		if b == nil {
			b = &bucket{}
			buckets[k] = b
		}
		b.total += r.Count
		if r.IsTarget {
			b.my += r.Count
		}
	}

	points := make([]TrendPoint, 0, len(buckets))
	for k, b := range buckets {
		p := TrendPoint{Date: k.day, Provider: k.provider}
		if b.total > 0 {
			p.SOV = float64(b.my) / float64(b.total) * 100
		}
		points = append(points, p)
	}

	sort.Slice(points, func(i, j int) bool {
		if !points[i].Date.Equal(points[j].Date) {
			return points[i].Date.Before(points[j].Date)
		}
		return points[i].Provider < points[j].Provider
	})
	return points
}

// dominantSentiment returns the most frequent sentiment bucket among the
// given rows, preferring Positive over Neutral over Negative on ties.
func dominantSentiment(rows []Row) string {
	if len(rows) == 0 {
		return ""
	}

	counts := make(map[string]int)
	for _, r := range rows {
		counts[r.Sentiment]++
	}

	best := ""
	for _, s := range []string{SentimentPositive, SentimentNeutral, SentimentNegative} {
		if best == "" || counts[s] > counts[best] {
			if counts[s] > 0 {
				best = s
			}
		}
	}
	return best
}
