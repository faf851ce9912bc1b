package visibility

import (
	"sort"
	"time"
)

// BrandStat is the aggregated standing of one brand across a row set. The
// target brand's rows are merged into a single entry regardless of the name
// variations the pipeline extracted.
type BrandStat struct {
	Brand             string    `json:"brand"`
	IsTarget          bool      `json:"is_target"`
	Mentions          int       `json:"mentions"`
	UniqueKeywords    int       `json:"unique_keywords"`
	AvgRank           float64   `json:"avg_rank"` // 0 = never ranked
	DominantSentiment string    `json:"dominant_sentiment"`
	FirstSeen         time.Time `json:"first_seen"`
	SOV               float64   `json:"sov"`      // share of all mentions, percent
	Presence          float64   `json:"presence"` // share of keywords covered, percent
}

// SortKey selects the leaderboard ordering.
type SortKey int

const (
	// ByMentions sorts descending by mention volume (frequency leaderboard).
	ByMentions SortKey = iota
	// ByRank sorts ascending by average rank; unranked brands go last.
	ByRank
)

// AggregateBrands rolls up per-brand stats over the row set. The target entry
// is always present, even with zero mentions, and carries targetName as its
// display name.
func AggregateBrands(rows []Row, targetName string) []BrandStat {
	type acc struct {
		stat     BrandStat
		rankSum  int
		rankN    int
		keywords map[string]struct{}
		rows     []Row
	}

	totalMentions := 0
	allKeywords := make(map[string]struct{})
	accs := make(map[string]*acc)

	get := func(name string, isTarget bool) *acc {
		a := accs[name]
		if a == nil {
			a = &acc{
				stat:     BrandStat{Brand: name, IsTarget: isTarget},
				keywords: make(map[string]struct{}),
			}
			accs[name] = a
		}
		return a
	}

	// Target entry exists even when nothing was found.
	get(targetName, true)

	for _, r := range rows {
		totalMentions += r.Count
		allKeywords[r.KeywordID] = struct{}{}

		name := r.Brand
		if r.IsTarget {
			name = targetName
		}
		a := get(name, r.IsTarget)

		a.stat.Mentions += r.Count
		a.keywords[r.KeywordID] = struct{}{}
		a.rows = append(a.rows, r)
		if r.Rank > 0 {
			a.rankSum += r.Rank
			a.rankN++
		}
		if a.stat.FirstSeen.IsZero() || r.CreatedAt.Before(a.stat.FirstSeen) {
			a.stat.FirstSeen = r.CreatedAt
		}
	}

	stats := make([]BrandStat, 0, len(accs))
	for _, a := range accs {
		s := a.stat
		s.UniqueKeywords = len(a.keywords)
		if a.rankN > 0 {
			s.AvgRank = float64(a.rankSum) / float64(a.rankN)
		}
		s.DominantSentiment = dominantSentiment(a.rows)
		if totalMentions > 0 {
			s.SOV = float64(s.Mentions) / float64(totalMentions) * 100
		}
		if len(allKeywords) > 0 {
			s.Presence = float64(s.UniqueKeywords) / float64(len(allKeywords)) * 100
		}
		stats = append(stats, s)
	}

	// Deterministic base order before any leaderboard sort.
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Mentions != stats[j].Mentions {
			return stats[i].Mentions > stats[j].Mentions
		}
		return stats[i].Brand < stats[j].Brand
	})
	return stats
}

// RankedBrand is one leaderboard entry. Included marks membership of the
// top-N selection; the target brand is always included, evicting the Nth
// organic entry when it would otherwise fall outside.
type RankedBrand struct {
	BrandStat
	Included bool `json:"included"`
}

// TopN sorts all brands by the requested key and marks the top n as included,
// with guaranteed target inclusion. The full ordered list is returned so the
// caller can offer inclusion toggles beyond the default selection.
func TopN(stats []BrandStat, n int, key SortKey) []RankedBrand {
	ranked := make([]RankedBrand, len(stats))
	for i, s := range stats {
		ranked[i] = RankedBrand{BrandStat: s}
	}

	switch key {
	case ByRank:
		sort.SliceStable(ranked, func(i, j int) bool {
			ri, rj := ranked[i].AvgRank, ranked[j].AvgRank
			if ri == 0 {
				return false
			}
			if rj == 0 {
				return true
			}
			return ri < rj
		})
	default:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Mentions > ranked[j].Mentions
		})
	}

	if n > len(ranked) {
		n = len(ranked)
	}

	targetIdx := -1
	for i := range ranked {
		if ranked[i].IsTarget {
			targetIdx = i
			break
		}
	}

	for i := 0; i < n; i++ {
		ranked[i].Included = true
	}
	if targetIdx >= n && n > 0 {
		// Evict the last organic entry in favor of the target.
		ranked[n-1].Included = false
		ranked[targetIdx].Included = true
	}

	return ranked
}
