package migration

import (
	"context"

	"github.com/bmw-ece-ntust/trello-github-migration/pkg/models"
)

// GitHub is the surface of the GitHub API the migration needs, REST and
// GraphQL combined. The concrete implementation lives in pkg/github; tests
// swap in handler-func doubles. Every implementation is expected to route
// its calls through the rate limit governor.
type GitHub interface {
	// VerifyAccess checks credentials and repository permissions and primes
	// rate-limit tracking.
	VerifyAccess(ctx context.Context) error

	// SearchIssueByTitle returns the issue whose title matches exactly, or
	// nil when none exists.
	SearchIssueByTitle(ctx context.Context, title string) (*models.IssueRef, error)

	// ListIssueComments returns all comment bodies of an issue in creation
	// order.
	ListIssueComments(ctx context.Context, issueNumber int) ([]string, error)

	// CreateIssue creates an issue and returns its reference.
	CreateIssue(ctx context.Context, title, body string, labels []string) (*models.IssueRef, error)

	// AddComment writes one comment through the REST fallback path.
	AddComment(ctx context.Context, issueNumber int, body string) error

	// AddCommentBatch writes all bodies in one combined GraphQL mutation.
	AddCommentBatch(ctx context.Context, issueNodeID string, bodies []string) error

	// EnsureLabel creates a label unless it already exists.
	EnsureLabel(ctx context.Context, name, color, description string) error

	// StatusField fetches the Project's single-select Status field.
	StatusField(ctx context.Context) (*models.StatusField, error)

	// CreateStatusOption adds an option to the status field and returns the
	// refreshed field.
	CreateStatusOption(ctx context.Context, field *models.StatusField, name string) (*models.StatusField, error)

	// AddProjectItem adds an issue to the Project, returning the existing
	// item when already present.
	AddProjectItem(ctx context.Context, issue *models.IssueRef) (*models.ProjectItemRef, error)

	// SetItemStatus assigns a status option to a project item.
	SetItemStatus(ctx context.Context, item *models.ProjectItemRef, field *models.StatusField, optionID string) error

	// ListProjectIssues returns every issue sitting in the Project.
	ListProjectIssues(ctx context.Context) ([]models.ProjectIssue, error)

	// DeleteIssue permanently deletes an issue by its GraphQL node id.
	DeleteIssue(ctx context.Context, issueNodeID string) error
}
