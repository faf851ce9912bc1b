// Package scans orchestrates LLM scan runs: policy checks, fan-out to the
// analysis webhook per (keyword, provider) pair, and failure collection.
package scans

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/virshi/ai-visibility/internal/models"
	"github.com/virshi/ai-visibility/internal/store"
	"github.com/virshi/ai-visibility/internal/webhooks"
)

// ErrProjectBlocked is returned when a blocked project tries to scan. It is a
// business rule, not a system failure.
var ErrProjectBlocked = errors.New("project is blocked")

// ErrNoKeywords is returned when nothing is eligible to scan.
var ErrNoKeywords = errors.New("no keywords to scan")

// Trial projects get exactly one scan per keyword, checked against the
// keyword's whole history regardless of provider.
const trialScanLimitReason = "trial tier allows a single scan per keyword"

// Service dispatches scan runs.
type Service struct {
	store       store.Interface
	hooks       webhooks.Interface
	concurrency int
}

// NewService creates a scan service. concurrency caps how many webhook
// triggers run at once.
func NewService(st store.Interface, hooks webhooks.Interface, concurrency int) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{store: st, hooks: hooks, concurrency: concurrency}
}

// Skip records a keyword that was not dispatched and why.
type Skip struct {
	Keyword string `json:"keyword"`
	Reason  string `json:"reason"`
}

// Failure records one (keyword, provider) trigger that the webhook refused.
type Failure struct {
	Keyword  string `json:"keyword"`
	Provider string `json:"provider"`
	Error    string `json:"error"`
}

// Result summarizes one scan run.
type Result struct {
	RunID      string    `json:"run_id"`
	Dispatched int       `json:"dispatched"`
	Skipped    []Skip    `json:"skipped,omitempty"`
	Failed     []Failure `json:"failed,omitempty"`
}

// Trigger runs scans for the given keywords and providers. Empty keywordIDs
// means all active keywords of the project. Keywords × providers are
// dispatched through a bounded worker pool; each trigger is independent and
// append-only on the far side, so failures are collected rather than
// aborting the run, and nothing is retried automatically.
func (s *Service) Trigger(ctx context.Context, projectID string, keywordIDs []string, providers []string, userEmail string) (*Result, error) {
	project, err := s.store.ProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.Status == models.StatusBlocked {
		return nil, ErrProjectBlocked
	}

	keywords, err := s.eligibleKeywords(ctx, project, keywordIDs)
	if err != nil {
		return nil, err
	}

	result := &Result{RunID: uuid.New().String()}

	var runnable []models.Keyword
	for _, kw := range keywords {
		if project.Status == models.StatusTrial {
			scanned, err := s.store.HasScans(ctx, kw.ID)
			if err != nil {
				return nil, err
			}
			if scanned {
				result.Skipped = append(result.Skipped, Skip{Keyword: kw.KeywordText, Reason: trialScanLimitReason})
				continue
			}
		}
		runnable = append(runnable, kw)
	}

	if len(runnable) == 0 && len(result.Skipped) == 0 {
		return nil, ErrNoKeywords
	}

	assets, err := s.store.OfficialAssets(ctx, projectID)
	if err != nil {
		return nil, err
	}
	whitelist := make([]string, 0, len(assets))
	for _, a := range assets {
		whitelist = append(whitelist, a.DomainOrURL)
	}

	type job struct {
		keyword  models.Keyword
		provider string
	}
	jobs := make(chan job)
	failures := make(chan Failure, len(runnable)*len(providers))

	var wg sync.WaitGroup
	for i := 0; i < s.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				err := s.hooks.TriggerAnalysis(ctx, webhooks.AnalysisRequest{
					ProjectID:      project.ID,
					Keywords:       []string{j.keyword.KeywordText},
					BrandName:      project.BrandName,
					UserEmail:      userEmail,
					Provider:       j.provider,
					Models:         []string{j.provider},
					OfficialAssets: whitelist,
				})
				if err != nil {
					logrus.Errorf("Scan trigger failed for keyword %q on %s: %v", j.keyword.KeywordText, j.provider, err)
					failures <- Failure{Keyword: j.keyword.KeywordText, Provider: j.provider, Error: err.Error()}
				}
			}
		}()
	}

	dispatched := 0
	for _, kw := range runnable {
		for _, p := range providers {
			jobs <- job{keyword: kw, provider: p}
			dispatched++
		}
	}
	close(jobs)
	wg.Wait()
	close(failures)

	for f := range failures {
		result.Failed = append(result.Failed, f)
	}
	result.Dispatched = dispatched - len(result.Failed)

	logrus.Infof("Scan run %s for project %s: %d dispatched, %d skipped, %d failed",
		result.RunID, project.ID, result.Dispatched, len(result.Skipped), len(result.Failed))
	return result, nil
}

func (s *Service) eligibleKeywords(ctx context.Context, project *models.Project, keywordIDs []string) ([]models.Keyword, error) {
	all, err := s.store.KeywordsByProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	if len(keywordIDs) == 0 {
		var active []models.Keyword
		for _, kw := range all {
			if kw.IsActive {
				active = append(active, kw)
			}
		}
		return active, nil
	}

	wanted := make(map[string]struct{}, len(keywordIDs))
	for _, id := range keywordIDs {
		wanted[id] = struct{}{}
	}
	var selected []models.Keyword
	for _, kw := range all {
		if _, ok := wanted[kw.ID]; ok {
			selected = append(selected, kw)
		}
	}
	return selected, nil
}
