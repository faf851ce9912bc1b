package models

import "time"

// Project is the brand identity under analysis. Status gates scanning:
// blocked projects refuse all triggers, trial projects get one scan per keyword.
type Project struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	BrandName string `json:"brand_name"`
	Domain    string `json:"domain"`
	Industry  string `json:"industry"`
	Products  string `json:"products"`
	Status    string `json:"status"` // "trial", "active", "blocked"
	AllowCron bool   `json:"allow_cron"`
	Region    string `json:"region"`
}

// Project status values.
const (
	StatusTrial   = "trial"
	StatusActive  = "active"
	StatusBlocked = "blocked"
)

// Keyword is a tracked query string scoped to a project.
type Keyword struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	KeywordText string    `json:"keyword_text"`
	IsActive    bool      `json:"is_active"`
	IsAutoScan  bool      `json:"is_auto_scan"`
	Frequency   string    `json:"frequency"` // "daily", "weekly", "monthly"
	CreatedAt   time.Time `json:"created_at"`
}

// ScanResult is one LLM invocation's raw output for a (keyword, provider)
// pair. Rows are append-only; an empty UserEmail marks an automated run.
type ScanResult struct {
	ID          string    `json:"id"`
	KeywordID   string    `json:"keyword_id"`
	ProjectID   string    `json:"project_id"`
	Provider    string    `json:"provider"`
	CreatedAt   time.Time `json:"created_at"`
	RawResponse string    `json:"raw_response"`
	UserEmail   string    `json:"user_email"`
}

// BrandMention is one brand's extracted presence within a single scan.
// IsMyBrand comes from the extraction pipeline as a boolean-ish string and
// SentimentScore as free text; both are normalized by the visibility package.
type BrandMention struct {
	ScanResultID   string `json:"scan_result_id"`
	BrandName      string `json:"brand_name"`
	MentionCount   int    `json:"mention_count"`
	RankPosition   int    `json:"rank_position"` // 0 = unranked
	SentimentScore string `json:"sentiment_score"`
	IsMyBrand      string `json:"is_my_brand"`
}

// ExtractedSource is one citation URL found within a scan result. The stored
// IsOfficial flag is not trusted; classification is recomputed against the
// project whitelist.
type ExtractedSource struct {
	ScanResultID string `json:"scan_result_id"`
	URL          string `json:"url"`
	Domain       string `json:"domain"`
	IsOfficial   bool   `json:"is_official"`
}

// OfficialAsset is a project-scoped whitelist entry.
type OfficialAsset struct {
	ID          string `json:"id"`
	ProjectID   string `json:"project_id"`
	DomainOrURL string `json:"domain_or_url"`
	Type        string `json:"type"` // "website", "social", "article", "other"
}

// Profile holds user identity details used for history attribution and roles.
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"` // "user", "admin", "super_admin"
}

// Report is a generated visibility report awaiting moderation.
type Report struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	ReportName  string    `json:"report_name"`
	HTMLContent string    `json:"html_content"`
	Status      string    `json:"status"` // "pending", "published"
	CreatedAt   time.Time `json:"created_at"`
}

// Report status values.
const (
	ReportPending   = "pending"
	ReportPublished = "published"
)

// StrategyReport is an AI-written recommendation document for one category.
type StrategyReport struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Category    string    `json:"category"`
	HTMLContent string    `json:"html_content"`
	CreatedAt   time.Time `json:"created_at"`
}
