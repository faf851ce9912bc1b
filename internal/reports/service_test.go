package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/virshi/ai-visibility/internal/config"
	"github.com/virshi/ai-visibility/internal/models"
	"github.com/virshi/ai-visibility/internal/visibility"
)

func fixtureProject() *models.Project {
	return &models.Project{ID: "p1", BrandName: "Acme", Status: models.StatusActive}
}

func fixtureScans() []models.ScanResult {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return []models.ScanResult{
		{ID: "s1", KeywordID: "k1", ProjectID: "p1", Provider: "gpt-4o", CreatedAt: base},
		{ID: "s2", KeywordID: "k1", ProjectID: "p1", Provider: "gpt-4o", CreatedAt: base.Add(48 * time.Hour)},
		{ID: "s3", KeywordID: "k1", ProjectID: "p1", Provider: "perplexity", CreatedAt: base.Add(48 * time.Hour)},
	}
}

func fixtureMentions() []models.BrandMention {
	return []models.BrandMention{
		// Stale scan; must not reach current-state numbers.
		{ScanResultID: "s1", BrandName: "Acme", MentionCount: 9, IsMyBrand: "true", SentimentScore: "negative"},
		{ScanResultID: "s2", BrandName: "Acme", MentionCount: 2, RankPosition: 1, IsMyBrand: "true", SentimentScore: "positive"},
		{ScanResultID: "s2", BrandName: "Globex", MentionCount: 6, RankPosition: 2},
		{ScanResultID: "s3", BrandName: "Acme", MentionCount: 1, IsMyBrand: "true", SentimentScore: "neutral"},
		{ScanResultID: "s3", BrandName: "Globex", MentionCount: 3},
	}
}

func fixtureSources() []models.ExtractedSource {
	return []models.ExtractedSource{
		{ScanResultID: "s2", URL: "https://acme.com/docs"},
		{ScanResultID: "s2", URL: "https://blog.example.com/review"},
		{ScanResultID: "s1", URL: "https://acme.com/old"},
	}
}

func buildFixtureData(t *testing.T) ReportData {
	t.Helper()
	classifier := visibility.NewClassifier([]string{"acme.com"})
	keywords := []models.Keyword{{ID: "k1", ProjectID: "p1", KeywordText: "best crm", IsActive: true}}
	return BuildReportData(fixtureProject(), keywords, fixtureScans(), fixtureMentions(), fixtureSources(), classifier)
}

func TestBuildReportData_SnapshotExcludesStaleScans(t *testing.T) {
	data := buildFixtureData(t)

	// Only s2 and s3 survive the snapshot; the 9 stale mentions from s1 do not.
	assert.Equal(t, 3, data.Overall.MyMentions)
	assert.InDelta(t, 25.0, data.Overall.SOV, 0.01)
}

func TestBuildReportData_SourcesCountedOnCurrentScansOnly(t *testing.T) {
	data := buildFixtureData(t)

	assert.Equal(t, 2, data.TotalSources)
	assert.Equal(t, 1, data.OfficialSources)
}

func TestBuildReportData_ProviderSections(t *testing.T) {
	data := buildFixtureData(t)

	byName := make(map[string]ProviderSection)
	for _, p := range data.Providers {
		byName[p.Provider] = p
	}

	assert.Len(t, data.Providers, 3)
	assert.Equal(t, 1, byName[visibility.ProviderChatGPT].Scans)
	assert.InDelta(t, 25.0, byName[visibility.ProviderChatGPT].SOV, 0.01)
	assert.InDelta(t, 25.0, byName[visibility.ProviderPerplexity].SOV, 0.01)
	assert.Equal(t, 0, byName[visibility.ProviderGemini].Scans)
	assert.Zero(t, byName[visibility.ProviderGemini].SOV)
}

func TestBuildReportData_BrandLandscape(t *testing.T) {
	data := buildFixtureData(t)

	assert.NotEmpty(t, data.Brands)
	assert.Equal(t, "Globex", data.Brands[0].Brand)
	assert.Equal(t, 9, data.Brands[0].Mentions)

	var target *visibility.RankedBrand
	for i := range data.Brands {
		if data.Brands[i].IsTarget {
			target = &data.Brands[i]
		}
	}
	assert.NotNil(t, target)
	assert.True(t, target.Included)
	assert.Equal(t, "Acme", target.Brand)
}

func TestBuildReportData_KeywordSections(t *testing.T) {
	data := buildFixtureData(t)

	assert.Len(t, data.Keywords, 1)
	kw := data.Keywords[0]
	assert.Equal(t, "best crm", kw.Keyword)
	assert.True(t, kw.Stats.HasData)
	assert.Equal(t, "Globex", kw.Stats.TopCompetitor)
	assert.Len(t, kw.Sources, 2)
	assert.True(t, kw.Sources[0].Official != kw.Sources[1].Official)
}

func TestBuildReportData_EmptyProject(t *testing.T) {
	classifier := visibility.NewClassifier(nil)

	data := BuildReportData(fixtureProject(), nil, nil, nil, nil, classifier)

	assert.Zero(t, data.Overall.SOV)
	assert.Zero(t, data.TotalSources)
	assert.Len(t, data.Providers, 3)
	assert.Empty(t, data.Keywords)
}

func TestArchiveAccessors_DisabledWithoutStorage(t *testing.T) {
	svc := NewService(nil, &config.Config{}, nil)

	_, err := svc.ArchivedList("p1")
	assert.ErrorIs(t, err, ErrArchiveDisabled)

	_, err = svc.ArchivedReport("p1/2026-03-10T09-00-00.html")
	assert.ErrorIs(t, err, ErrArchiveDisabled)

	assert.ErrorIs(t, svc.DeleteArchived("p1/2026-03-10T09-00-00.html"), ErrArchiveDisabled)
}
