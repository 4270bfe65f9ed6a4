package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bmw-ece-ntust/trello-github-migration/pkg/logger"
	"github.com/bmw-ece-ntust/trello-github-migration/pkg/models"
	"github.com/google/go-github/v70/github"
)

// issueSearchQuery builds the search phrase for an exact-title lookup. The
// search syntax has no escape for quotes inside a phrase, so quotes and
// backslashes are replaced with spaces; that only widens the candidate set,
// and the exact-title comparison on the results decides the match.
func issueSearchQuery(owner, repo, title string) string {
	phrase := strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' {
			return ' '
		}
		return r
	}, title)
	return fmt.Sprintf(`repo:%s/%s is:issue in:title "%s"`, owner, repo, phrase)
}

// SearchIssueByTitle looks for an open or closed issue whose title matches
// exactly (after trimming surrounding whitespace). Returns nil when no issue
// matches; fuzzy matches are ignored.
func (c *Client) SearchIssueByTitle(ctx context.Context, title string) (*models.IssueRef, error) {
	title = strings.TrimSpace(title)
	query := issueSearchQuery(c.target.Owner, c.target.Repo, title)

	var found *models.IssueRef
	page := 1
	for {
		var result *github.IssuesSearchResult
		var resp *github.Response
		err := c.restCall(ctx, func() (*github.Response, error) {
			var err error
			result, resp, err = c.inner.Search.Issues(ctx, query, &github.SearchOptions{
				ListOptions: github.ListOptions{PerPage: 100, Page: page},
			})
			return resp, err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to search issues: %w", err)
		}
		for _, issue := range result.Issues {
			if strings.TrimSpace(issue.GetTitle()) == title {
				found = &models.IssueRef{
					Number: issue.GetNumber(),
					NodeID: issue.GetNodeID(),
					Title:  strings.TrimSpace(issue.GetTitle()),
				}
				break
			}
		}
		if found != nil || resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}
	return found, nil
}

// ListIssueComments returns the bodies of all comments on an issue in
// creation order.
func (c *Client) ListIssueComments(ctx context.Context, issueNumber int) ([]string, error) {
	var bodies []string
	page := 1
	for {
		var comments []*github.IssueComment
		var resp *github.Response
		err := c.restCall(ctx, func() (*github.Response, error) {
			var err error
			comments, resp, err = c.inner.Issues.ListComments(ctx, c.target.Owner, c.target.Repo, issueNumber,
				&github.IssueListCommentsOptions{
					Sort:        github.Ptr("created"),
					Direction:   github.Ptr("asc"),
					ListOptions: github.ListOptions{PerPage: 100, Page: page},
				})
			return resp, err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list comments of issue #%d: %w", issueNumber, err)
		}
		for _, comment := range comments {
			bodies = append(bodies, comment.GetBody())
		}
		if resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}
	return bodies, nil
}

// CreateIssue creates a new issue with the given labels.
func (c *Client) CreateIssue(ctx context.Context, title, body string, labels []string) (*models.IssueRef, error) {
	logger.Debug("Creating GitHub issue",
		"owner", c.target.Owner,
		"repo", c.target.Repo,
		"title", title)

	var issue *github.Issue
	err := c.restCall(ctx, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		issue, resp, err = c.inner.Issues.Create(ctx, c.target.Owner, c.target.Repo, &github.IssueRequest{
			Title:  github.Ptr(title),
			Body:   github.Ptr(body),
			Labels: &labels,
		})
		if err != nil && resp != nil {
			err = fmt.Errorf("%w, x-github-request-id: %s", err, resp.Header.Get("x-github-request-id"))
		}
		return resp, err
	})
	if err != nil {
		logger.Error("Failed to create GitHub issue", "title", title, "error", err)
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}

	return &models.IssueRef{
		Number: issue.GetNumber(),
		NodeID: issue.GetNodeID(),
		Title:  strings.TrimSpace(issue.GetTitle()),
	}, nil
}

// AddComment creates a single issue comment. This is the REST fallback used
// when the issue's GraphQL node id is unknown.
func (c *Client) AddComment(ctx context.Context, issueNumber int, body string) error {
	err := c.restCall(ctx, func() (*github.Response, error) {
		_, resp, err := c.inner.Issues.CreateComment(ctx, c.target.Owner, c.target.Repo, issueNumber,
			&github.IssueComment{Body: github.Ptr(body)})
		if err != nil && resp != nil {
			err = fmt.Errorf("%w, x-github-request-id: %s", err, resp.Header.Get("x-github-request-id"))
		}
		return resp, err
	})
	if err != nil {
		return fmt.Errorf("failed to create comment on issue #%d: %w", issueNumber, err)
	}
	return nil
}

// EnsureLabel creates a label if it does not exist yet; an already-existing
// label is not an error.
func (c *Client) EnsureLabel(ctx context.Context, name, color, description string) error {
	err := c.restCall(ctx, func() (*github.Response, error) {
		_, resp, err := c.inner.Issues.CreateLabel(ctx, c.target.Owner, c.target.Repo, &github.Label{
			Name:        github.Ptr(name),
			Color:       github.Ptr(color),
			Description: github.Ptr(description),
		})
		if err != nil {
			var ghErr *github.ErrorResponse
			if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusUnprocessableEntity {
				// already_exists
				return resp, nil
			}
		}
		return resp, err
	})
	if err != nil {
		return fmt.Errorf("failed to create label %q: %w", name, err)
	}
	return nil
}

// VerifyAccess checks that the credential can push to the target repository
// and primes the governor from the current rate-limit quotas.
func (c *Client) VerifyAccess(ctx context.Context) error {
	var repo *github.Repository
	err := c.restCall(ctx, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		repo, resp, err = c.inner.Repositories.Get(ctx, c.target.Owner, c.target.Repo)
		return resp, err
	})
	if err != nil {
		return fmt.Errorf("failed to access repository %s/%s: %w", c.target.Owner, c.target.Repo, err)
	}
	perms := repo.GetPermissions()
	if !perms["push"] && !perms["admin"] {
		return fmt.Errorf("no push access to %s/%s", c.target.Owner, c.target.Repo)
	}

	var limits *github.RateLimits
	err = c.restCall(ctx, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		limits, resp, err = c.inner.RateLimit.Get(ctx)
		return resp, err
	})
	if err != nil {
		return fmt.Errorf("failed to read rate limits: %w", err)
	}
	if core := limits.GetCore(); core != nil {
		c.gov.AfterCall(SurfaceREST, core.Remaining, core.Reset.Time)
	}
	if gql := limits.GetGraphQL(); gql != nil {
		c.gov.AfterCall(SurfaceGraphQL, gql.Remaining, gql.Reset.Time)
	}

	logger.Debug("Verified repository access",
		"repo", fmt.Sprintf("%s/%s", c.target.Owner, c.target.Repo),
		"rest_remaining", limits.GetCore().Remaining,
		"graphql_remaining", limits.GetGraphQL().Remaining)
	return nil
}
