package migration

import (
	"github.com/bmw-ece-ntust/trello-github-migration/pkg/logger"
	"github.com/bmw-ece-ntust/trello-github-migration/pkg/models"
)

// Summarize aggregates per-card outcomes into run totals.
func Summarize(outcomes []*models.CardOutcome) *models.Summary {
	summary := &models.Summary{Cards: outcomes}
	for _, rec := range outcomes {
		switch rec.Outcome {
		case models.OutcomeCreated:
			summary.Created++
		case models.OutcomeVerified:
			summary.Verified++
		case models.OutcomeFailed:
			summary.Failed++
		}
		summary.CommentsMigrated += rec.CommentsMigrated
		summary.CommentsSkipped += rec.CommentsSkipped
		summary.CommentsFailed += rec.CommentsFailed
	}
	return summary
}

// LogSummary writes the run totals and each failed card.
func LogSummary(summary *models.Summary) {
	logger.Info("Migration summary",
		"cards", len(summary.Cards),
		"created", summary.Created,
		"verified", summary.Verified,
		"failed", summary.Failed,
		"commentsMigrated", summary.CommentsMigrated,
		"commentsSkipped", summary.CommentsSkipped,
		"commentsFailed", summary.CommentsFailed)
	for _, rec := range summary.Cards {
		if rec.Outcome == models.OutcomeFailed || rec.Err != nil {
			logger.Error("Card did not migrate cleanly",
				"card", rec.Title, "outcome", string(rec.Outcome), "error", rec.Err)
		}
	}
}
