// Package chat proxies user questions to the assistant workflow, enriched
// with project context and the official-source whitelist.
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/virshi/ai-visibility/internal/models"
	"github.com/virshi/ai-visibility/internal/store"
	"github.com/virshi/ai-visibility/internal/webhooks"
)

// ErrEmptyQuery is returned for a blank question.
var ErrEmptyQuery = errors.New("empty chat query")

// Service answers visibility questions through the assistant workflow.
type Service struct {
	store store.Interface
	hooks webhooks.Interface
}

// NewService creates a chat service.
func NewService(st store.Interface, hooks webhooks.Interface) *Service {
	return &Service{store: st, hooks: hooks}
}

// Ask forwards one question with full project context. The whitelist load is
// best-effort: the assistant still answers without it.
func (s *Service) Ask(ctx context.Context, projectID, query string, requester *models.Profile) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", ErrEmptyQuery
	}

	project, err := s.store.ProjectByID(ctx, projectID)
	if err != nil {
		return "", err
	}

	var whitelist []string
	if assets, err := s.store.OfficialAssets(ctx, projectID); err != nil {
		logrus.Warnf("Failed to load official assets for chat context: %v", err)
	} else {
		for _, a := range assets {
			whitelist = append(whitelist, a.DomainOrURL)
		}
	}

	req := webhooks.ChatRequest{
		Query:           query,
		ProjectID:       project.ID,
		ProjectName:     project.BrandName,
		TargetBrand:     project.BrandName,
		Domain:          project.Domain,
		Status:          project.Status,
		OfficialSources: whitelist,
	}
	if requester != nil {
		req.UserID = requester.ID
		req.UserEmail = requester.Email
		req.UserName = displayName(requester)
		req.Role = requester.Role
	} else {
		req.UserID = "guest"
	}

	return s.hooks.Chat(ctx, req)
}

// displayName prefers the profile's real name, falling back to the mailbox
// part of the email.
func displayName(p *models.Profile) string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name != "" {
		return name
	}
	if at := strings.Index(p.Email, "@"); at > 0 {
		return p.Email[:at]
	}
	return p.Email
}
