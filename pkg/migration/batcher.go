package migration

import (
	"context"
	"time"

	"github.com/bmw-ece-ntust/trello-github-migration/pkg/logger"
	"github.com/bmw-ece-ntust/trello-github-migration/pkg/models"
	"github.com/bmw-ece-ntust/trello-github-migration/pkg/trello"
	"github.com/bmw-ece-ntust/trello-github-migration/pkg/utils"
)

// BatchSize is the number of comments combined into one GraphQL mutation.
const BatchSize = 25

// CommentOutcome counts what happened to one card's comments.
type CommentOutcome struct {
	Migrated int
	Skipped  int
	Failed   int
}

// CommentBatcher writes a card's comments to its issue, skipping bodies the
// issue already carries and grouping the rest into aliased GraphQL batches.
// Issues without a GraphQL node id fall back to one REST call per comment.
type CommentBatcher struct {
	api GitHub
	loc *time.Location
}

func NewCommentBatcher(api GitHub, loc *time.Location) *CommentBatcher {
	if loc == nil {
		loc = time.UTC
	}
	return &CommentBatcher{api: api, loc: loc}
}

// Migrate formats and writes the comments missing from the issue. It never
// returns an error: failures are counted and logged so the card's remaining
// batches and the rest of the run continue. Cancellation stops dispatch
// between batches; comments never attempted are not counted as failed.
func (b *CommentBatcher) Migrate(ctx context.Context, issue *models.IssueRef, comments []trello.Comment) CommentOutcome {
	var out CommentOutcome
	var pending []string
	for _, comment := range comments {
		body := utils.FormatCommentBody(comment.AuthorName, comment.AuthorUsername, comment.Text, comment.CreatedAt, b.loc)
		if issue.HasCommentBody(body) {
			out.Skipped++
			continue
		}
		pending = append(pending, body)
	}
	if len(pending) == 0 {
		return out
	}

	if issue.NodeID == "" {
		logger.Warn("Issue has no node id, writing comments one by one",
			"issue", issue.Number, "comments", len(pending))
		for i, body := range pending {
			if ctx.Err() != nil {
				logger.Warn("Cancelled, leaving remaining comments for the next run",
					"issue", issue.Number, "remaining", len(pending)-i)
				break
			}
			if err := b.api.AddComment(ctx, issue.Number, body); err != nil {
				logger.Error("Failed to add comment",
					"issue", issue.Number, "comment", i, "error", err)
				out.Failed++
				continue
			}
			out.Migrated++
		}
		return out
	}

	for start := 0; start < len(pending); start += BatchSize {
		if ctx.Err() != nil {
			logger.Warn("Cancelled, leaving remaining comments for the next run",
				"issue", issue.Number, "remaining", len(pending)-start)
			break
		}
		end := min(start+BatchSize, len(pending))
		batch := pending[start:end]
		if err := b.api.AddCommentBatch(ctx, issue.NodeID, batch); err != nil {
			logger.Error("Comment batch failed",
				"issue", issue.Number, "batchStart", start, "size", len(batch), "error", err)
			out.Failed += len(batch)
			continue
		}
		logger.Debug("Comment batch written",
			"issue", issue.Number, "batchStart", start, "size", len(batch))
		out.Migrated += len(batch)
	}
	return out
}
