// Command report-preview renders a visibility report from built-in fixture
// data to a local HTML file, so the template can be iterated on without a
// live table store or webhook backend.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/virshi/ai-visibility/internal/models"
	"github.com/virshi/ai-visibility/internal/reports"
	"github.com/virshi/ai-visibility/internal/visibility"
)

func main() {
	outDir := "preview_output"
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}

	project := &models.Project{
		ID:        "preview-project",
		BrandName: "Acme CRM",
		Domain:    "acme.com",
		Status:    models.StatusActive,
	}

	keywords := []models.Keyword{
		{ID: "k1", ProjectID: project.ID, KeywordText: "best crm for small business", IsActive: true},
		{ID: "k2", ProjectID: project.ID, KeywordText: "top crm tools 2026", IsActive: true},
		{ID: "k3", ProjectID: project.ID, KeywordText: "crm with ai assistant", IsActive: true},
	}

	now := time.Now().UTC()
	scans := []models.ScanResult{
		{ID: "s1", KeywordID: "k1", ProjectID: project.ID, Provider: "gpt-4o", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "s2", KeywordID: "k1", ProjectID: project.ID, Provider: "gemini-1.5-pro", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "s3", KeywordID: "k2", ProjectID: project.ID, Provider: "gpt-4o", CreatedAt: now.Add(-3 * time.Hour)},
		{ID: "s4", KeywordID: "k2", ProjectID: project.ID, Provider: "perplexity", CreatedAt: now.Add(-1 * time.Hour)},
		// Stale run, superseded by s1.
		{ID: "s0", KeywordID: "k1", ProjectID: project.ID, Provider: "gpt-4o", CreatedAt: now.Add(-50 * time.Hour)},
	}

	mentions := []models.BrandMention{
		{ScanResultID: "s1", BrandName: "Acme CRM", MentionCount: 4, RankPosition: 2, SentimentScore: "positive", IsMyBrand: "true"},
		{ScanResultID: "s1", BrandName: "Globex", MentionCount: 7, RankPosition: 1, SentimentScore: "neutral"},
		{ScanResultID: "s1", BrandName: "Initech", MentionCount: 2, RankPosition: 4, SentimentScore: "neutral"},
		{ScanResultID: "s2", BrandName: "Acme", MentionCount: 1, RankPosition: 5, SentimentScore: "neutral", IsMyBrand: "true"},
		{ScanResultID: "s2", BrandName: "Globex", MentionCount: 5, RankPosition: 1, SentimentScore: "positive"},
		{ScanResultID: "s3", BrandName: "Globex", MentionCount: 6, RankPosition: 1, SentimentScore: "neutral"},
		{ScanResultID: "s4", BrandName: "Acme CRM", MentionCount: 3, RankPosition: 1, SentimentScore: "positive", IsMyBrand: "true"},
		{ScanResultID: "s4", BrandName: "Hooli", MentionCount: 2, RankPosition: 3, SentimentScore: "negative"},
		{ScanResultID: "s0", BrandName: "Acme CRM", MentionCount: 9, RankPosition: 1, SentimentScore: "negative", IsMyBrand: "true"},
	}

	sources := []models.ExtractedSource{
		{ScanResultID: "s1", URL: "https://acme.com/pricing"},
		{ScanResultID: "s1", URL: "https://crm-reviews.example.com/top-10"},
		{ScanResultID: "s2", URL: "https://www.acme.com/blog/ai-features"},
		{ScanResultID: "s4", URL: "https://reddit.com/r/crm/comments/xyz"},
	}

	classifier := visibility.NewClassifier([]string{"acme.com"})

	data := reports.BuildReportData(project, keywords, scans, mentions, sources, classifier)
	data.ReportName = fmt.Sprintf("%s Visibility Report — Preview", project.BrandName)

	html, err := reports.Generate(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "cannot create %s: %v\n", outDir, err)
		os.Exit(1)
	}
	outFile := filepath.Join(outDir, "report-preview.html")
	if err := os.WriteFile(outFile, []byte(html), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "cannot write %s: %v\n", outFile, err)
		os.Exit(1)
	}

	fmt.Printf("Report written to %s\n", outFile)
	fmt.Printf("  providers: %d, queries: %d, brands: %d\n", len(data.Providers), len(data.Keywords), len(data.Brands))
	fmt.Printf("  overall SOV: %.1f%%, official citations: %d/%d\n", data.Overall.SOV, data.OfficialSources, data.TotalSources)
}
