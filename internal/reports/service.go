package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/virshi/ai-visibility/internal/config"
	"github.com/virshi/ai-visibility/internal/models"
	"github.com/virshi/ai-visibility/internal/storage"
	"github.com/virshi/ai-visibility/internal/store"
	"github.com/virshi/ai-visibility/internal/visibility"
	"gopkg.in/gomail.v2"
)

// reportScanLimit caps how much history one report reads. Newest scans win;
// the snapshot dedup keeps only the latest per (keyword, provider) anyway.
const reportScanLimit = 2000

// topBrandCount is how many brands the landscape table shows.
const topBrandCount = 10

// ErrArchiveDisabled is returned by the archive accessors when the service
// was built without blob storage.
var ErrArchiveDisabled = errors.New("report archive is not configured")

// Service generates reports and runs their moderation lifecycle.
type Service struct {
	store   store.Interface
	config  *config.Config
	archive storage.ArchiveInterface // nil disables archiving
}

// NewService creates a report service. archive may be nil.
func NewService(st store.Interface, cfg *config.Config, archive storage.ArchiveInterface) *Service {
	return &Service{store: st, config: cfg, archive: archive}
}

// Generate builds a report over the project's current snapshot and stores it
// with status pending, awaiting moderation.
func (s *Service) Generate(ctx context.Context, projectID, reportName string) (*models.Report, error) {
	project, err := s.store.ProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	keywords, err := s.store.KeywordsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	assets, err := s.store.OfficialAssets(ctx, projectID)
	if err != nil {
		return nil, err
	}
	classifier := visibility.NewClassifierFromAssets(assets)

	scans, err := s.store.ScansByProject(ctx, projectID, reportScanLimit)
	if err != nil {
		return nil, err
	}

	scanIDs := make([]string, 0, len(scans))
	for _, sc := range scans {
		scanIDs = append(scanIDs, sc.ID)
	}

	mentions, err := s.store.MentionsByScanIDs(ctx, scanIDs)
	if err != nil {
		return nil, err
	}
	sources, err := s.store.SourcesByScanIDs(ctx, scanIDs)
	if err != nil {
		return nil, err
	}

	if reportName == "" {
		reportName = fmt.Sprintf("%s Visibility Report — %s", project.BrandName, time.Now().UTC().Format("January 2006"))
	}

	data := BuildReportData(project, keywords, scans, mentions, sources, classifier)
	data.ReportName = reportName

	html, err := Generate(data)
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	report := models.Report{
		ProjectID:   projectID,
		ReportName:  reportName,
		HTMLContent: html,
		Status:      models.ReportPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.InsertReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	// Archiving is secondary; a failure never loses the report itself.
	if s.archive != nil {
		name := fmt.Sprintf("%s/%s.html", projectID, time.Now().UTC().Format("2006-01-02T15-04-05"))
		if err := s.archive.Store(name, []byte(html)); err != nil {
			logrus.Errorf("Failed to archive report %s: %v", name, err)
		}
	}

	logrus.Infof("Generated report %q for project %s over %d scans", reportName, projectID, len(scans))
	return &report, nil
}

// BuildReportData assembles every section of the report from raw rows.
func BuildReportData(project *models.Project, keywords []models.Keyword,
	scans []models.ScanResult, mentions []models.BrandMention, sources []models.ExtractedSource,
	classifier *visibility.Classifier) ReportData {

	rows := visibility.Join(scans, mentions, project.BrandName)
	snapshot := visibility.LatestScanIDs(scans)

	var current []visibility.Row
	for _, r := range rows {
		if _, ok := snapshot[r.ScanID]; ok {
			current = append(current, r)
		}
	}

	classified := classifier.Classify(sources)
	var currentSources []models.ExtractedSource
	for _, src := range classified {
		if _, ok := snapshot[src.ScanResultID]; ok {
			currentSources = append(currentSources, src)
		}
	}

	data := ReportData{
		BrandName:    project.BrandName,
		GeneratedAt:  time.Now().UTC(),
		KeywordCount: len(keywords),
		TotalScans:   len(scans),
		Overall:      overallStats(current),
		TotalSources: len(currentSources),
	}
	for _, src := range currentSources {
		if src.IsOfficial {
			data.OfficialSources++
		}
	}

	providerScans := make(map[string]int)
	for _, sc := range scans {
		if _, ok := snapshot[sc.ID]; ok {
			providerScans[visibility.NormalizeProvider(sc.Provider)]++
		}
	}
	for _, p := range visibility.Providers {
		data.Providers = append(data.Providers, ProviderSection{
			ProviderStats: visibility.Overview(rows, p, snapshot),
			Scans:         providerScans[p],
		})
	}

	brands := visibility.AggregateBrands(current, project.BrandName)
	data.Brands = visibility.TopN(brands, topBrandCount, visibility.ByMentions)

	scanKeyword := make(map[string]string, len(scans))
	for _, sc := range scans {
		scanKeyword[sc.ID] = sc.KeywordID
	}

	for _, kw := range keywords {
		section := KeywordSection{
			Keyword: kw.KeywordText,
			Stats:   visibility.KeywordOverview(rows, kw.ID, classified, classifier),
		}

		var kwRows []visibility.Row
		for _, r := range current {
			if r.KeywordID == kw.ID {
				kwRows = append(kwRows, r)
			}
		}
		if len(kwRows) > 0 {
			section.Brands = visibility.AggregateBrands(kwRows, project.BrandName)
		}

		for _, src := range currentSources {
			if scanKeyword[src.ScanResultID] != kw.ID {
				continue
			}
			section.Sources = append(section.Sources, SourceRow{
				URL:      src.URL,
				Domain:   src.Domain,
				Official: src.IsOfficial,
			})
		}

		data.Keywords = append(data.Keywords, section)
	}

	return data
}

// overallStats runs the core math over the whole snapshot, all providers
// mixed. This feeds the headline KPI cards.
func overallStats(current []visibility.Row) visibility.ProviderStats {
	snapshot := make(map[string]struct{}, len(current))
	for _, r := range current {
		snapshot[r.ScanID] = struct{}{}
	}

	return visibility.Overview(currentAsProvider(current), "All", snapshot)
}

// currentAsProvider collapses the provider dimension so Overview aggregates
// across all providers at once.
func currentAsProvider(rows []visibility.Row) []visibility.Row {
	out := make([]visibility.Row, len(rows))
	copy(out, rows)
	for i := range out {
		out[i].Provider = "All"
	}
	return out
}

// List returns the project's reports, optionally filtered by status.
func (s *Service) List(ctx context.Context, projectID, status string) ([]models.Report, error) {
	return s.store.ReportsByProject(ctx, projectID, status)
}

// Publish flips a pending report to published and delivers it by email when
// delivery is configured. Email failure does not roll the publish back.
func (s *Service) Publish(ctx context.Context, projectID, reportID string) error {
	reports, err := s.store.ReportsByProject(ctx, projectID, "")
	if err != nil {
		return err
	}

	var report *models.Report
	for i := range reports {
		if reports[i].ID == reportID {
			report = &reports[i]
			break
		}
	}
	if report == nil {
		return fmt.Errorf("report %s not found in project %s", reportID, projectID)
	}

	if err := s.store.UpdateReport(ctx, reportID, map[string]interface{}{
		"status": models.ReportPublished,
	}); err != nil {
		return fmt.Errorf("failed to publish report: %w", err)
	}
	logrus.Infof("Published report %s for project %s", reportID, projectID)

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(report); err != nil {
			logrus.Errorf("Failed to email published report %s: %v", reportID, err)
		}
	}

	return nil
}

// UpdateContent replaces the HTML of a report during moderation.
func (s *Service) UpdateContent(ctx context.Context, reportID, html string) error {
	return s.store.UpdateReport(ctx, reportID, map[string]interface{}{
		"html_content": html,
	})
}

// Delete removes a report.
func (s *Service) Delete(ctx context.Context, reportID string) error {
	return s.store.DeleteReport(ctx, reportID)
}

// ArchivedList returns the blob names of every archived report for a project.
func (s *Service) ArchivedList(projectID string) ([]string, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.List(projectID + "/")
}

// ArchivedReport fetches one archived report's HTML by blob name.
func (s *Service) ArchivedReport(name string) ([]byte, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.Retrieve(name)
}

// DeleteArchived removes one archived report blob.
func (s *Service) DeleteArchived(name string) error {
	if s.archive == nil {
		return ErrArchiveDisabled
	}
	return s.archive.Delete(name)
}

func (s *Service) sendEmail(report *models.Report) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", report.ReportName)
	m.SetBody("text/html", report.HTMLContent)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
