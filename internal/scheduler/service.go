// Package scheduler runs automated scans: an hourly tick walks projects that
// opted into cron and dispatches the keywords whose frequency is due.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/virshi/ai-visibility/internal/config"
	"github.com/virshi/ai-visibility/internal/models"
	"github.com/virshi/ai-visibility/internal/scans"
	"github.com/virshi/ai-visibility/internal/store"
)

// Frequency intervals. A keyword is due when its last scan is older than the
// interval, or when it has never been scanned.
var intervals = map[string]time.Duration{
	"daily":   24 * time.Hour,
	"weekly":  7 * 24 * time.Hour,
	"monthly": 30 * 24 * time.Hour,
}

// Service runs the auto-scan schedule.
type Service struct {
	config *config.Config
	store  store.Interface
	scans  *scans.Service
	cron   *cron.Cron
}

// NewService creates a scheduler. The tick runs in the configured time zone
// so stored timestamps and operator expectations line up.
func NewService(cfg *config.Config, st store.Interface, scanService *scans.Service) (*Service, error) {
	location, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, err
	}

	return &Service{
		config: cfg,
		store:  st,
		scans:  scanService,
		cron:   cron.New(cron.WithLocation(location)),
	}, nil
}

// Start begins the hourly auto-scan tick.
func (s *Service) Start() error {
	_, err := s.cron.AddFunc("0 * * * *", func() {
		if err := s.RunDueScans(context.Background()); err != nil {
			logrus.Errorf("Auto-scan tick failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Infof("Scheduler started, hourly auto-scan tick in %s", s.config.TimeZone)
	return nil
}

// Stop stops the scheduler.
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}

// RunDueScans walks every cron-enabled project and dispatches the keywords
// whose schedule is due. Automated runs carry an empty user email.
func (s *Service) RunDueScans(ctx context.Context) error {
	projects, err := s.store.ProjectsWithCron(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, project := range projects {
		if project.Status == models.StatusBlocked {
			continue
		}

		due, err := s.dueKeywords(ctx, project.ID, now)
		if err != nil {
			logrus.Errorf("Failed to collect due keywords for project %s: %v", project.ID, err)
			continue
		}
		if len(due) == 0 {
			continue
		}

		result, err := s.scans.Trigger(ctx, project.ID, due, s.config.Providers, "")
		if err != nil {
			logrus.Errorf("Auto-scan dispatch failed for project %s: %v", project.ID, err)
			continue
		}
		logrus.Infof("Auto-scan for project %s: %d dispatched, %d failed",
			project.ID, result.Dispatched, len(result.Failed))
	}

	return nil
}

// dueKeywords returns the IDs of active auto-scan keywords whose frequency
// interval has elapsed since their last scan.
func (s *Service) dueKeywords(ctx context.Context, projectID string, now time.Time) ([]string, error) {
	keywords, err := s.store.KeywordsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var due []string
	for _, kw := range keywords {
		if !kw.IsActive || !kw.IsAutoScan {
			continue
		}
		interval, ok := intervals[kw.Frequency]
		if !ok {
			continue
		}

		last, found, err := s.store.LastScanTime(ctx, kw.ID)
		if err != nil {
			return nil, err
		}
		if !found || now.Sub(last) >= interval {
			due = append(due, kw.ID)
		}
	}
	return due, nil
}
