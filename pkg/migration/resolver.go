package migration

import (
	"context"
	"fmt"
	"strings"

	"github.com/bmw-ece-ntust/trello-github-migration/pkg/models"
)

// IssueResolver decides whether a card already has an issue. The match is on
// the exact trimmed title, so re-running a migration converges instead of
// duplicating.
type IssueResolver struct {
	api GitHub
}

func NewIssueResolver(api GitHub) *IssueResolver {
	return &IssueResolver{api: api}
}

// Resolve returns the existing issue for the card title with its current
// comment bodies loaded, or nil when the card has not been migrated yet.
func (r *IssueResolver) Resolve(ctx context.Context, title string) (*models.IssueRef, error) {
	issue, err := r.api.SearchIssueByTitle(ctx, strings.TrimSpace(title))
	if err != nil {
		return nil, fmt.Errorf("failed to search for issue: %w", err)
	}
	if issue == nil {
		return nil, nil
	}
	bodies, err := r.api.ListIssueComments(ctx, issue.Number)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments on issue #%d: %w", issue.Number, err)
	}
	issue.ExistingCommentBodies = bodies
	return issue, nil
}
