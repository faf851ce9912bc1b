// Package recommendations orders AI-written strategy documents, one per GEO
// (Generative Engine Optimization) category, and keeps their history.
package recommendations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/virshi/ai-visibility/internal/models"
	"github.com/virshi/ai-visibility/internal/store"
	"github.com/virshi/ai-visibility/internal/webhooks"
)

// ErrProjectBlocked is returned when a blocked project orders a recommendation.
var ErrProjectBlocked = errors.New("project is blocked")

// ErrUnknownCategory is returned for a category outside the fixed set.
var ErrUnknownCategory = errors.New("unknown recommendation category")

// Category is one GEO strategy direction. Key is what gets persisted; Title
// and Context are what the generation workflow receives.
type Category struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Context string `json:"-"`
}

// Categories is the fixed set of orderable strategy directions.
var Categories = []Category{
	{
		Key:     "Digital",
		Title:   "Digital & Technical GEO",
		Context: "Analyze technical SEO, Schema markup, site structure, and data accessibility for LLM crawling. Focus on Technical GEO factors.",
	},
	{
		Key:     "Content",
		Title:   "Content Strategy",
		Context: "Generate content strategy optimized for Generative Search. Focus on answer structure, NLP-friendly formats, and topical authority.",
	},
	{
		Key:     "PR",
		Title:   "PR & Brand Authority",
		Context: "Analyze brand authority signals, mentions in tier-1 media, and external trust factors influencing LLM perception.",
	},
	{
		Key:     "Social",
		Title:   "Social Media & UGC",
		Context: "Analyze social signals, User Generated Content (Reddit, LinkedIn, Reviews), and their impact on real-time AI answers.",
	},
}

func categoryByKey(key string) (Category, bool) {
	for _, c := range Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// Service orders recommendations and reads back their history.
type Service struct {
	store store.Interface
	hooks webhooks.Interface
}

// NewService creates a recommendation service.
func NewService(st store.Interface, hooks webhooks.Interface) *Service {
	return &Service{store: st, hooks: hooks}
}

// Order requests one strategy document from the generation workflow and
// persists it. The webhook receives the category title and its prompt
// context; the stored row keeps the short category key.
func (s *Service) Order(ctx context.Context, projectID, categoryKey string, requester *models.Profile) (*models.StrategyReport, error) {
	category, ok := categoryByKey(categoryKey)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, categoryKey)
	}

	project, err := s.store.ProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.Status == models.StatusBlocked {
		return nil, ErrProjectBlocked
	}

	req := webhooks.RecommendationRequest{
		ProjectID:      project.ID,
		BrandName:      project.BrandName,
		Domain:         project.Domain,
		Category:       category.Title,
		RequestContext: category.Context,
	}
	if requester != nil {
		req.UserID = requester.ID
		req.UserEmail = requester.Email
	}

	html, err := s.hooks.RequestRecommendation(ctx, req)
	if err != nil {
		return nil, err
	}

	report := models.StrategyReport{
		ProjectID:   projectID,
		Category:    category.Key,
		HTMLContent: html,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.InsertStrategyReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to store strategy report: %w", err)
	}

	logrus.Infof("Stored %s recommendation for project %s", category.Key, projectID)
	return &report, nil
}

// History returns the project's strategy documents, newest first, optionally
// filtered to one category key.
func (s *Service) History(ctx context.Context, projectID, categoryKey string) ([]models.StrategyReport, error) {
	reports, err := s.store.StrategyReportsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if categoryKey == "" {
		return reports, nil
	}

	var filtered []models.StrategyReport
	for _, r := range reports {
		if r.Category == categoryKey {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}
