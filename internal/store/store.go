package store

import (
	"context"
	"fmt"
	"time"

	"github.com/virshi/ai-visibility/internal/models"
)

// The store rejects very long `in` filters, so multi-id reads are chunked.
const chunkSize = 200

// TableStore implements Interface over the REST table client.
type TableStore struct {
	client *Client
}

// Ensure TableStore implements Interface
var _ Interface = (*TableStore)(nil)

// New creates a typed store over the REST table client.
func New(client *Client) *TableStore {
	return &TableStore{client: client}
}

// Ping verifies the store is reachable. A failure here at startup is the one
// fatal error in the system.
func (s *TableStore) Ping(ctx context.Context) error {
	var rows []models.Project
	if err := s.client.Select(ctx, "projects", &rows, Columns("id"), Limit(1)); err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}
	return nil
}

func (s *TableStore) ProjectByID(ctx context.Context, id string) (*models.Project, error) {
	var rows []models.Project
	if err := s.client.Select(ctx, "projects", &rows, Eq("id", id), Limit(1)); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("project %s not found", id)
	}
	return &rows[0], nil
}

func (s *TableStore) ProjectsWithCron(ctx context.Context) ([]models.Project, error) {
	var rows []models.Project
	err := s.client.Select(ctx, "projects", &rows, Eq("allow_cron", true))
	return rows, err
}

func (s *TableStore) KeywordsByProject(ctx context.Context, projectID string) ([]models.Keyword, error) {
	var rows []models.Keyword
	err := s.client.Select(ctx, "keywords", &rows, Eq("project_id", projectID), OrderDesc("created_at"))
	return rows, err
}

func (s *TableStore) KeywordByID(ctx context.Context, id string) (*models.Keyword, error) {
	var rows []models.Keyword
	if err := s.client.Select(ctx, "keywords", &rows, Eq("id", id), Limit(1)); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("keyword %s not found", id)
	}
	return &rows[0], nil
}

func (s *TableStore) InsertKeywords(ctx context.Context, keywords []models.Keyword) error {
	if len(keywords) == 0 {
		return nil
	}
	type insertRow struct {
		ProjectID   string `json:"project_id"`
		KeywordText string `json:"keyword_text"`
		IsActive    bool   `json:"is_active"`
	}
	rows := make([]insertRow, len(keywords))
	for i, k := range keywords {
		rows[i] = insertRow{ProjectID: k.ProjectID, KeywordText: k.KeywordText, IsActive: k.IsActive}
	}
	return s.client.Insert(ctx, "keywords", rows)
}

// DeleteKeyword removes a keyword and its scan history. The scans go first so
// a partial failure never leaves orphaned results pointing at a live keyword.
func (s *TableStore) DeleteKeyword(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, "scan_results", Eq("keyword_id", id)); err != nil {
		return err
	}
	return s.client.Delete(ctx, "keywords", Eq("id", id))
}

func (s *TableStore) ScansByProject(ctx context.Context, projectID string, limit int) ([]models.ScanResult, error) {
	opts := []QueryOption{Eq("project_id", projectID), OrderDesc("created_at")}
	if limit > 0 {
		opts = append(opts, Limit(limit))
	}
	var rows []models.ScanResult
	err := s.client.Select(ctx, "scan_results", &rows, opts...)
	return rows, err
}

func (s *TableStore) ScansByKeyword(ctx context.Context, keywordID string) ([]models.ScanResult, error) {
	var rows []models.ScanResult
	err := s.client.Select(ctx, "scan_results", &rows, Eq("keyword_id", keywordID), OrderAsc("created_at"))
	return rows, err
}

func (s *TableStore) HasScans(ctx context.Context, keywordID string) (bool, error) {
	var rows []models.ScanResult
	if err := s.client.Select(ctx, "scan_results", &rows, Eq("keyword_id", keywordID), Columns("id"), Limit(1)); err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

func (s *TableStore) LastScanTime(ctx context.Context, keywordID string) (time.Time, bool, error) {
	var rows []models.ScanResult
	err := s.client.Select(ctx, "scan_results", &rows,
		Eq("keyword_id", keywordID), Columns("id", "created_at"), OrderDesc("created_at"), Limit(1))
	if err != nil {
		return time.Time{}, false, err
	}
	if len(rows) == 0 {
		return time.Time{}, false, nil
	}
	return rows[0].CreatedAt, true, nil
}

func (s *TableStore) DeleteScan(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "scan_results", Eq("id", id))
}

func (s *TableStore) MentionsByScanIDs(ctx context.Context, scanIDs []string) ([]models.BrandMention, error) {
	var all []models.BrandMention
	for _, chunk := range chunks(scanIDs) {
		var rows []models.BrandMention
		if err := s.client.Select(ctx, "brand_mentions", &rows, In("scan_result_id", chunk)); err != nil {
			return nil, err
		}
		all = append(all, rows...)
	}
	return all, nil
}

func (s *TableStore) SourcesByScanIDs(ctx context.Context, scanIDs []string) ([]models.ExtractedSource, error) {
	var all []models.ExtractedSource
	for _, chunk := range chunks(scanIDs) {
		var rows []models.ExtractedSource
		if err := s.client.Select(ctx, "extracted_sources", &rows, In("scan_result_id", chunk)); err != nil {
			return nil, err
		}
		all = append(all, rows...)
	}
	return all, nil
}

func (s *TableStore) OfficialAssets(ctx context.Context, projectID string) ([]models.OfficialAsset, error) {
	var rows []models.OfficialAsset
	err := s.client.Select(ctx, "official_assets", &rows, Eq("project_id", projectID))
	return rows, err
}

func (s *TableStore) InsertOfficialAsset(ctx context.Context, asset models.OfficialAsset) error {
	return s.client.Insert(ctx, "official_assets", map[string]interface{}{
		"project_id":    asset.ProjectID,
		"domain_or_url": asset.DomainOrURL,
		"type":          asset.Type,
	})
}

func (s *TableStore) DeleteOfficialAsset(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "official_assets", Eq("id", id))
}

func (s *TableStore) ProfilesByEmails(ctx context.Context, emails []string) ([]models.Profile, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	var rows []models.Profile
	err := s.client.Select(ctx, "profiles", &rows,
		Columns("id", "email", "first_name", "last_name", "role"), In("email", emails))
	return rows, err
}

func (s *TableStore) ProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	var rows []models.Profile
	if err := s.client.Select(ctx, "profiles", &rows, Eq("id", id), Limit(1)); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("profile %s not found", id)
	}
	return &rows[0], nil
}

func (s *TableStore) InsertReport(ctx context.Context, report models.Report) error {
	return s.client.Insert(ctx, "reports", map[string]interface{}{
		"project_id":   report.ProjectID,
		"report_name":  report.ReportName,
		"html_content": report.HTMLContent,
		"status":       report.Status,
	})
}

func (s *TableStore) ReportsByProject(ctx context.Context, projectID, status string) ([]models.Report, error) {
	opts := []QueryOption{Eq("project_id", projectID), OrderDesc("created_at")}
	if status != "" {
		opts = append(opts, Eq("status", status))
	}
	var rows []models.Report
	err := s.client.Select(ctx, "reports", &rows, opts...)
	return rows, err
}

func (s *TableStore) UpdateReport(ctx context.Context, id string, patch map[string]interface{}) error {
	return s.client.Update(ctx, "reports", patch, Eq("id", id))
}

func (s *TableStore) DeleteReport(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "reports", Eq("id", id))
}

func (s *TableStore) InsertStrategyReport(ctx context.Context, report models.StrategyReport) error {
	return s.client.Insert(ctx, "strategy_reports", map[string]interface{}{
		"project_id":   report.ProjectID,
		"category":     report.Category,
		"html_content": report.HTMLContent,
		"created_at":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *TableStore) StrategyReportsByProject(ctx context.Context, projectID string) ([]models.StrategyReport, error) {
	var rows []models.StrategyReport
	err := s.client.Select(ctx, "strategy_reports", &rows, Eq("project_id", projectID), OrderDesc("created_at"))
	return rows, err
}

func chunks(ids []string) [][]string {
	var out [][]string
	for i := 0; i < len(ids); i += chunkSize {
		end := i + chunkSize
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[i:end])
	}
	return out
}
