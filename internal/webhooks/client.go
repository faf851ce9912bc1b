// Package webhooks holds the clients for the external workflow-automation
// webhooks. The contracts are opaque HTTP POST/JSON exchanges authenticated
// with a shared secret; failures are surfaced to the caller without retries,
// re-triggering is always a user decision.
package webhooks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/virshi/ai-visibility/internal/config"
)

const authHeader = "virshi-auth"

// Client calls the four workflow webhooks.
type Client struct {
	cfg *config.Config

	// Separate clients because the workflows have very different latencies:
	// scan triggers ack fast, recommendation and chat generation do not.
	analysis *resty.Client
	reco     *resty.Client
	chat     *resty.Client
}

// Ensure Client implements Interface
var _ Interface = (*Client)(nil)

// NewClient creates the webhook client set.
func NewClient(cfg *config.Config) *Client {
	newHTTP := func(timeout time.Duration) *resty.Client {
		return resty.New().
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader(authHeader, cfg.WebhookAuthSecret)
	}

	return &Client{
		cfg:      cfg,
		analysis: newHTTP(60 * time.Second),
		reco:     newHTTP(120 * time.Second),
		chat:     newHTTP(240 * time.Second),
	}
}

// AnalysisRequest asks the scan workflow to run the given keywords against a
// provider and write the results back to the store.
type AnalysisRequest struct {
	ProjectID      string   `json:"project_id"`
	Keywords       []string `json:"keywords"`
	BrandName      string   `json:"brand_name"`
	UserEmail      string   `json:"user_email"`
	Provider       string   `json:"provider"`
	Models         []string `json:"models"`
	OfficialAssets []string `json:"official_assets"`
}

// TriggerAnalysis fires one scan run. Anything but HTTP 200 is a failure the
// caller surfaces to the user.
func (c *Client) TriggerAnalysis(ctx context.Context, req AnalysisRequest) error {
	resp, err := c.analysis.R().
		SetContext(ctx).
		SetBody(req).
		Post(c.cfg.AnalysisWebhookURL)
	if err != nil {
		return fmt.Errorf("analysis webhook: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("analysis webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	logrus.Debugf("Triggered analysis for project %s (%d keywords, provider %s)",
		req.ProjectID, len(req.Keywords), req.Provider)
	return nil
}

// PromptRequest asks the generation workflow for suggested tracking queries.
type PromptRequest struct {
	Brand    string `json:"brand"`
	Domain   string `json:"domain"`
	Industry string `json:"industry"`
	Products string `json:"products"`
}

// GeneratePrompts returns AI-suggested keyword prompts. The workflow answers
// either with a bare JSON array or with {"prompts": [...]}.
func (c *Client) GeneratePrompts(ctx context.Context, req PromptRequest) ([]string, error) {
	resp, err := c.analysis.R().
		SetContext(ctx).
		SetBody(req).
		Post(c.cfg.PromptGenWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("prompt webhook: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("prompt webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var direct []string
	if err := json.Unmarshal(resp.Body(), &direct); err == nil {
		return direct, nil
	}

	var wrapped struct {
		Prompts []string `json:"prompts"`
	}
	if err := json.Unmarshal(resp.Body(), &wrapped); err != nil {
		return nil, fmt.Errorf("prompt webhook: decode response: %w", err)
	}
	return wrapped.Prompts, nil
}

// RecommendationRequest orders an AI-written HTML strategy report.
type RecommendationRequest struct {
	Timestamp      string `json:"timestamp"`
	UserID         string `json:"user_id"`
	UserEmail      string `json:"user_email"`
	ProjectID      string `json:"project_id"`
	BrandName      string `json:"brand_name"`
	Domain         string `json:"domain"`
	Category       string `json:"category"`
	RequestContext string `json:"request_context"`
	RequestType    string `json:"request_type"`
}

// RequestRecommendation returns the generated HTML document. The workflow has
// shipped the payload under several keys over time; all are accepted.
func (c *Client) RequestRecommendation(ctx context.Context, req RecommendationRequest) (string, error) {
	if req.RequestType == "" {
		req.RequestType = "html_report"
	}
	if req.Timestamp == "" {
		req.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	resp, err := c.reco.R().
		SetContext(ctx).
		SetBody(req).
		Post(c.cfg.RecommendationWebhookURL)
	if err != nil {
		return "", fmt.Errorf("recommendation webhook: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("recommendation webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	html := firstField(resp.Body(), "html", "output", "report")
	if html == "" {
		return "", fmt.Errorf("recommendation webhook: empty response")
	}
	return html, nil
}

// ChatRequest carries a user question plus the project context the assistant
// answers from.
type ChatRequest struct {
	Query           string   `json:"query"`
	UserID          string   `json:"user_id"`
	UserEmail       string   `json:"user_email"`
	UserName        string   `json:"user_name"`
	Role            string   `json:"role"`
	ProjectID       string   `json:"project_id"`
	ProjectName     string   `json:"project_name"`
	TargetBrand     string   `json:"target_brand"`
	Domain          string   `json:"domain"`
	Status          string   `json:"status"`
	OfficialSources []string `json:"official_sources"`
}

// Chat sends a question to the assistant workflow and returns its reply.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	resp, err := c.chat.R().
		SetContext(ctx).
		SetBody(req).
		Post(c.cfg.ChatWebhookURL)
	if err != nil {
		return "", fmt.Errorf("chat webhook: %w", err)
	}

	switch resp.StatusCode() {
	case 200:
	case 403:
		return "", fmt.Errorf("chat webhook: access denied")
	case 404:
		return "", fmt.Errorf("chat webhook: workflow not found")
	default:
		return "", fmt.Errorf("chat webhook returned status %d", resp.StatusCode())
	}

	reply := firstField(resp.Body(), "output", "answer", "text")
	if reply == "" {
		return "", fmt.Errorf("chat webhook: empty reply")
	}
	return reply, nil
}

// firstField returns the first non-empty string among the named keys of a
// JSON object body.
func firstField(body []byte, keys ...string) string {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, k := range keys {
		if v, ok := payload[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
