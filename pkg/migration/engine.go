package migration

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bmw-ece-ntust/trello-github-migration/pkg/logger"
	"github.com/bmw-ece-ntust/trello-github-migration/pkg/models"
	"github.com/bmw-ece-ntust/trello-github-migration/pkg/trello"
	"github.com/bmw-ece-ntust/trello-github-migration/pkg/utils"
)

// Options tunes a migration run.
type Options struct {
	// MaxCommentWorkers bounds how many cards have comments in flight at
	// once. Defaults to 4.
	MaxCommentWorkers int
	// Timezone renders comment timestamps. Defaults to UTC.
	Timezone *time.Location
}

func (o Options) withDefaults() Options {
	if o.MaxCommentWorkers <= 0 {
		o.MaxCommentWorkers = 4
	}
	if o.Timezone == nil {
		o.Timezone = time.UTC
	}
	return o
}

// Engine drives one migration run: for every open card, resolve or create
// its issue, migrate missing comments, and place the issue under the
// Project status option named after the card's list. A failing card is
// recorded and the run moves on.
type Engine struct {
	api      GitHub
	resolver *IssueResolver
	batcher  *CommentBatcher
	status   *StatusSynchronizer
	opts     Options

	// created within this run, keyed by trimmed title, so two cards with
	// the same title converge on one issue even before search catches up
	created map[string]*models.IssueRef
}

func NewEngine(api GitHub, field *models.StatusField, opts Options) *Engine {
	opts = opts.withDefaults()
	return &Engine{
		api:      api,
		resolver: NewIssueResolver(api),
		batcher:  NewCommentBatcher(api, opts.Timezone),
		status:   NewStatusSynchronizer(api, field),
		opts:     opts,
	}
}

// Run migrates the snapshot. Card failures never abort the run; the summary
// reports them. Cancellation stops dispatching new cards, waits for in-flight
// comment writes, and returns the partial summary with ctx.Err().
func (e *Engine) Run(ctx context.Context, snapshot *trello.Snapshot) (*models.Summary, error) {
	e.created = make(map[string]*models.IssueRef)

	var (
		mu       sync.Mutex
		group    errgroup.Group
		outcomes []*models.CardOutcome
	)
	group.SetLimit(e.opts.MaxCommentWorkers)
	cancelled := false

runLoop:
	for _, list := range snapshot.Lists {
		if len(list.Cards) == 0 {
			logger.Debug("Skipping empty list", "list", list.Name)
			continue
		}
		logger.Info("Processing list", "list", list.Name, "cards", len(list.Cards))

		listLabel := "List: " + list.Name
		if err := e.api.EnsureLabel(ctx, listLabel, listLabelColor, labelDescription); err != nil {
			logger.Warn("Failed to ensure list label", "label", listLabel, "error", err)
			listLabel = ""
		}

		optionID, optionErr := e.status.EnsureOption(ctx, list.Name)
		if optionErr != nil {
			logger.Error("Failed to ensure status option", "list", list.Name, "error", optionErr)
		}

		for _, card := range list.Cards {
			select {
			case <-ctx.Done():
				cancelled = true
				break runLoop
			default:
			}

			rec := &models.CardOutcome{CardID: card.ID, Title: card.Title}
			outcomes = append(outcomes, rec)

			issue, createdNow, err := e.resolveOrCreate(ctx, card, list.Name, listLabel)
			if err != nil {
				rec.Outcome = models.OutcomeFailed
				rec.Err = err
				logger.Error("Card failed", "card", card.Title, "error", err)
				continue
			}
			if createdNow {
				rec.Outcome = models.OutcomeCreated
			} else {
				rec.Outcome = models.OutcomeVerified
				logger.Debug("Issue already exists", "card", card.Title, "issue", issue.Number)
			}

			if len(card.Comments) > 0 {
				comments := card.Comments
				group.Go(func() error {
					out := e.batcher.Migrate(ctx, issue, comments)
					mu.Lock()
					rec.CommentsMigrated = out.Migrated
					rec.CommentsSkipped = out.Skipped
					rec.CommentsFailed = out.Failed
					if out.Failed > 0 && rec.Err == nil {
						rec.Err = &PartialBatchError{IssueNumber: issue.Number, FailedComments: out.Failed}
					}
					mu.Unlock()
					return nil
				})
			}

			if err := e.syncProjectItem(ctx, issue, optionID, optionErr); err != nil {
				mu.Lock()
				rec.Outcome = models.OutcomeFailed
				rec.Err = err
				mu.Unlock()
				logger.Error("Failed to sync project status", "card", card.Title, "error", err)
			}
		}
	}

	// in-flight comment writes finish before the summary is assembled
	_ = group.Wait()

	summary := Summarize(outcomes)
	LogSummary(summary)
	if cancelled {
		return summary, ctx.Err()
	}
	return summary, nil
}

func (e *Engine) resolveOrCreate(ctx context.Context, card trello.Card, listName, listLabel string) (*models.IssueRef, bool, error) {
	title := strings.TrimSpace(card.Title)

	if prev, ok := e.created[title]; ok {
		logger.Warn("Duplicate card title, reusing issue created earlier in this run",
			"card", card.Title, "issue", prev.Number)
		bodies, err := e.api.ListIssueComments(ctx, prev.Number)
		if err != nil {
			return nil, false, err
		}
		return &models.IssueRef{
			Number:                prev.Number,
			NodeID:                prev.NodeID,
			Title:                 prev.Title,
			ExistingCommentBodies: bodies,
		}, false, nil
	}

	issue, err := e.resolver.Resolve(ctx, title)
	if err != nil {
		return nil, false, err
	}
	if issue != nil {
		return issue, false, nil
	}

	labels := []string{ImportLabel}
	if listLabel != "" {
		labels = append(labels, listLabel)
	}
	body := utils.FormatIssueBody(card.Description, listName)
	created, err := e.api.CreateIssue(ctx, utils.TruncateText(title, utils.MaxIssueTitleLength), body, labels)
	if err != nil {
		return nil, false, err
	}
	logger.Info("Created issue", "card", card.Title, "issue", created.Number)
	e.created[title] = created
	return created, true, nil
}

func (e *Engine) syncProjectItem(ctx context.Context, issue *models.IssueRef, optionID string, optionErr error) error {
	if issue.NodeID == "" {
		logger.Warn("Issue has no node id, skipping project sync", "issue", issue.Number)
		return nil
	}
	item, err := e.status.AddItem(ctx, issue)
	if err != nil {
		return err
	}
	if optionErr != nil {
		return optionErr
	}
	return e.status.SetStatus(ctx, item, optionID)
}
