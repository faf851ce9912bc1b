package store

import (
	"context"
	"time"

	"github.com/virshi/ai-visibility/internal/models"
)

// Interface defines the typed reads and writes the services need from the
// hosted data store.
type Interface interface {
	Ping(ctx context.Context) error

	ProjectByID(ctx context.Context, id string) (*models.Project, error)
	ProjectsWithCron(ctx context.Context) ([]models.Project, error)

	KeywordsByProject(ctx context.Context, projectID string) ([]models.Keyword, error)
	KeywordByID(ctx context.Context, id string) (*models.Keyword, error)
	InsertKeywords(ctx context.Context, keywords []models.Keyword) error
	DeleteKeyword(ctx context.Context, id string) error

	ScansByProject(ctx context.Context, projectID string, limit int) ([]models.ScanResult, error)
	ScansByKeyword(ctx context.Context, keywordID string) ([]models.ScanResult, error)
	HasScans(ctx context.Context, keywordID string) (bool, error)
	LastScanTime(ctx context.Context, keywordID string) (time.Time, bool, error)
	DeleteScan(ctx context.Context, id string) error

	MentionsByScanIDs(ctx context.Context, scanIDs []string) ([]models.BrandMention, error)
	SourcesByScanIDs(ctx context.Context, scanIDs []string) ([]models.ExtractedSource, error)

	OfficialAssets(ctx context.Context, projectID string) ([]models.OfficialAsset, error)
	InsertOfficialAsset(ctx context.Context, asset models.OfficialAsset) error
	DeleteOfficialAsset(ctx context.Context, id string) error

	ProfilesByEmails(ctx context.Context, emails []string) ([]models.Profile, error)
	ProfileByID(ctx context.Context, id string) (*models.Profile, error)

	InsertReport(ctx context.Context, report models.Report) error
	ReportsByProject(ctx context.Context, projectID, status string) ([]models.Report, error)
	UpdateReport(ctx context.Context, id string, patch map[string]interface{}) error
	DeleteReport(ctx context.Context, id string) error

	InsertStrategyReport(ctx context.Context, report models.StrategyReport) error
	StrategyReportsByProject(ctx context.Context, projectID string) ([]models.StrategyReport, error)
}
