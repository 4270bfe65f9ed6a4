package migration

import (
	"context"
	"strings"

	"github.com/bmw-ece-ntust/trello-github-migration/pkg/logger"
)

// ClearOutcome counts what a cleanup pass did.
type ClearOutcome struct {
	Deleted int
	Skipped int
	Failed  int
}

// Clear deletes every issue of the target repository that sits in the
// configured Project, resetting a failed migration so it can be re-run from
// scratch. Items whose issue lives in another repository are skipped; a
// failed deletion is logged and the pass continues. The caller is expected
// to have confirmed the operation with the user.
func Clear(ctx context.Context, api GitHub, repo string) (ClearOutcome, error) {
	var out ClearOutcome

	issues, err := api.ListProjectIssues(ctx)
	if err != nil {
		return out, err
	}
	logger.Info("Found project items", "issues", len(issues))

	for _, issue := range issues {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		if !strings.EqualFold(issue.Repository, repo) {
			logger.Info("Skipping external item",
				"repository", issue.Repository, "issue", issue.Number)
			out.Skipped++
			continue
		}
		if err := api.DeleteIssue(ctx, issue.IssueNodeID); err != nil {
			logger.Error("Failed to delete issue",
				"issue", issue.Number, "title", issue.Title, "error", err)
			out.Failed++
			continue
		}
		logger.Info("Deleted issue", "issue", issue.Number, "title", issue.Title)
		out.Deleted++
	}
	return out, nil
}
