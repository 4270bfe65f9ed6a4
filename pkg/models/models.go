package models

import "strings"

// IssueRef identifies the GitHub issue that corresponds to one Trello card.
// NodeID is the GraphQL node id; when it is empty the batched comment
// mutation cannot be used and comments fall back to one REST call each.
type IssueRef struct {
	Number                int
	NodeID                string
	Title                 string
	ExistingCommentBodies []string
}

// HasCommentBody reports whether the issue already carries the exact body.
func (r *IssueRef) HasCommentBody(body string) bool {
	for _, b := range r.ExistingCommentBodies {
		if b == body {
			return true
		}
	}
	return false
}

// StatusOption is one choice of a Project's single-select status field.
type StatusOption struct {
	ID          string
	Name        string
	Color       string
	Description string
}

// StatusField describes the single-select "Status" field of the target
// Project and its current options.
type StatusField struct {
	ProjectID string
	FieldID   string
	Options   []StatusOption
}

// OptionID looks up an option id by name, case-insensitively.
func (f *StatusField) OptionID(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, opt := range f.Options {
		if strings.ToLower(strings.TrimSpace(opt.Name)) == name {
			return opt.ID, true
		}
	}
	return "", false
}

// ProjectItemRef links an issue to its row in the Project.
type ProjectItemRef struct {
	ItemID      string
	IssueNumber int
}

// ProjectIssue is an issue found among the Project's items, as seen during
// cleanup. Repository is the "owner/name" the issue belongs to; draft items
// and pull requests never become a ProjectIssue.
type ProjectIssue struct {
	ItemID      string
	IssueNodeID string
	Number      int
	Title       string
	Repository  string
}

// Outcome classifies what happened to one card during a run.
type Outcome string

const (
	OutcomeCreated  Outcome = "created"
	OutcomeVerified Outcome = "verified"
	OutcomeFailed   Outcome = "failed"
)

// CardOutcome is the per-card record reported at the end of a run.
type CardOutcome struct {
	CardID           string
	Title            string
	Outcome          Outcome
	CommentsMigrated int
	CommentsSkipped  int
	CommentsFailed   int
	Err              error
}

// Summary aggregates the outcomes of a whole run.
type Summary struct {
	Cards            []*CardOutcome
	Created          int
	Verified         int
	Failed           int
	CommentsMigrated int
	CommentsSkipped  int
	CommentsFailed   int
}
