// Package reports builds the downloadable visibility report: a self-contained
// HTML document assembled from current-state metrics, plus its moderation
// lifecycle (pending -> published) and delivery.
package reports

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/virshi/ai-visibility/internal/visibility"
)

// ReportData is everything the template needs. All metrics are precomputed;
// the template only formats.
type ReportData struct {
	BrandName       string
	ReportName      string
	GeneratedAt     time.Time
	KeywordCount    int
	TotalScans      int
	Overall         visibility.ProviderStats
	OfficialSources int
	TotalSources    int
	Providers       []ProviderSection
	Keywords        []KeywordSection
	Brands          []visibility.RankedBrand
}

// ProviderSection is one provider tab of the report.
type ProviderSection struct {
	visibility.ProviderStats
	Scans int
}

// KeywordSection is one per-query accordion block.
type KeywordSection struct {
	Keyword string
	Stats   visibility.KeywordStats
	Brands  []visibility.BrandStat
	Sources []SourceRow
}

// SourceRow is one citation line with its classification.
type SourceRow struct {
	URL      string
	Domain   string
	Official bool
}

const reportTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.ReportName}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; color: #222; }
        .header { background-color: #4b3fd4; color: white; padding: 20px; border-radius: 5px; }
        .kpi-row { display: flex; gap: 15px; margin: 20px 0; flex-wrap: wrap; }
        .kpi { background-color: #f5f5f5; padding: 15px 25px; border-radius: 5px; min-width: 140px; }
        .kpi .value { font-size: 1.8em; font-weight: bold; }
        .kpi .label { color: #666; font-size: 0.9em; }
        .provider { border: 1px solid #ddd; border-radius: 5px; padding: 15px; margin: 15px 0; }
        .provider h3 { margin-top: 0; }
        table { border-collapse: collapse; width: 100%; margin: 10px 0; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f5f5f5; }
        .keyword { border-left: 4px solid #4b3fd4; padding: 10px 15px; margin: 15px 0; background-color: #fafafa; }
        .keyword h4 { margin: 0 0 8px 0; }
        .badge { padding: 2px 8px; border-radius: 10px; font-size: 0.8em; color: white; }
        .official { background-color: #107c10; }
        .external { background-color: #605e5c; }
        .positive { color: #107c10; }
        .negative { color: #d13438; }
        .neutral { color: #605e5c; }
        .target-row { background-color: #eef1ff; font-weight: bold; }
        .muted { color: #888; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.ReportName}}</h1>
        <p>{{.BrandName}} &mdash; generated on {{.GeneratedAt.Format "January 2, 2006 at 15:04 UTC"}}</p>
    </div>

    <div class="kpi-row">
        <div class="kpi"><div class="value">{{pct .Overall.SOV}}</div><div class="label">Share of Voice</div></div>
        <div class="kpi"><div class="value">{{.Overall.MyMentions}}</div><div class="label">Brand Mentions</div></div>
        <div class="kpi"><div class="value">{{rank .Overall.AvgRank}}</div><div class="label">Average Rank</div></div>
        <div class="kpi"><div class="value">{{.OfficialSources}}/{{.TotalSources}}</div><div class="label">Official Citations</div></div>
        <div class="kpi"><div class="value">{{.KeywordCount}}</div><div class="label">Tracked Queries</div></div>
    </div>

    <h2>Providers</h2>
    {{range .Providers}}
    <div class="provider">
        <h3>{{.Provider}}</h3>
        {{if .Scans}}
        <table>
            <tr><th>Share of Voice</th><th>Mentions</th><th>Avg Rank</th><th>Positive</th><th>Neutral</th><th>Negative</th></tr>
            <tr>
                <td>{{pct .SOV}}</td>
                <td>{{.MyMentions}}</td>
                <td>{{rank .AvgRank}}</td>
                <td class="positive">{{pct .Sentiment.Positive}}</td>
                <td class="neutral">{{pct .Sentiment.Neutral}}</td>
                <td class="negative">{{pct .Sentiment.Negative}}</td>
            </tr>
        </table>
        {{else}}
        <p class="muted">No scans yet for this provider.</p>
        {{end}}
    </div>
    {{end}}

    {{if .Brands}}
    <h2>Brand Landscape</h2>
    <table>
        <tr><th>Brand</th><th>Mentions</th><th>SOV</th><th>Presence</th><th>Avg Rank</th><th>Sentiment</th></tr>
        {{range .Brands}}
        {{if .Included}}
        <tr{{if .IsTarget}} class="target-row"{{end}}>
            <td>{{.Brand}}</td>
            <td>{{.Mentions}}</td>
            <td>{{pct .SOV}}</td>
            <td>{{pct .Presence}}</td>
            <td>{{rank .AvgRank}}</td>
            <td class="{{sentimentClass .DominantSentiment}}">{{orDash .DominantSentiment}}</td>
        </tr>
        {{end}}
        {{end}}
    </table>
    {{end}}

    <h2>Queries</h2>
    {{range .Keywords}}
    <div class="keyword">
        <h4>{{.Keyword}}</h4>
        {{if .Stats.HasData}}
        <p>
            SOV {{pct .Stats.SOV}} &middot; {{.Stats.MyMentions}} mentions &middot;
            rank {{rank .Stats.AvgRank}}{{if .Stats.TopCompetitor}} &middot;
            top competitor {{.Stats.TopCompetitor}} ({{.Stats.TopCompetitorHits}}){{end}}
        </p>
        {{if .Brands}}
        <table>
            <tr><th>Brand</th><th>Mentions</th><th>Avg Rank</th><th>Sentiment</th></tr>
            {{range .Brands}}
            <tr{{if .IsTarget}} class="target-row"{{end}}>
                <td>{{.Brand}}</td>
                <td>{{.Mentions}}</td>
                <td>{{rank .AvgRank}}</td>
                <td class="{{sentimentClass .DominantSentiment}}">{{orDash .DominantSentiment}}</td>
            </tr>
            {{end}}
        </table>
        {{end}}
        {{if .Sources}}
        <table>
            <tr><th>Source</th><th>Domain</th><th>Type</th></tr>
            {{range .Sources}}
            <tr>
                <td><a href="{{.URL}}">{{truncate .URL 80}}</a></td>
                <td>{{.Domain}}</td>
                <td>{{if .Official}}<span class="badge official">official</span>{{else}}<span class="badge external">external</span>{{end}}</td>
            </tr>
            {{end}}
        </table>
        {{end}}
        {{else}}
        <p class="muted">No scan data yet.</p>
        {{end}}
    </div>
    {{end}}

    <hr>
    <p><small>Generated automatically from {{.TotalScans}} scans across {{.KeywordCount}} queries.</small></p>
</body>
</html>
`

// Generate renders the report HTML. The output is self-contained: inline
// styles, no external assets.
func Generate(data ReportData) (string, error) {
	t := template.New("report").Funcs(template.FuncMap{
		"pct": func(v float64) string {
			return fmt.Sprintf("%.1f%%", v)
		},
		"rank": func(v float64) string {
			if v == 0 {
				return "—"
			}
			return fmt.Sprintf("%.1f", v)
		},
		"orDash": func(s string) string {
			if s == "" {
				return "—"
			}
			return s
		},
		"sentimentClass": func(s string) string {
			switch s {
			case visibility.SentimentPositive:
				return "positive"
			case visibility.SentimentNegative:
				return "negative"
			case visibility.SentimentNeutral:
				return "neutral"
			}
			return "muted"
		},
		"truncate": func(s string, length int) string {
			if len(s) <= length {
				return s
			}
			return s[:length] + "..."
		},
	})

	t, err := t.Parse(reportTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return strings.TrimSpace(buf.String()), nil
}
