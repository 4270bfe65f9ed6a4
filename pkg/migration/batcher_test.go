package migration

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bmw-ece-ntust/trello-github-migration/pkg/models"
	"github.com/bmw-ece-ntust/trello-github-migration/pkg/trello"
	"github.com/bmw-ece-ntust/trello-github-migration/pkg/utils"
)

func makeComments(n int) []trello.Comment {
	comments := make([]trello.Comment, n)
	base := time.Date(2023, 5, 1, 9, 0, 0, 0, time.UTC)
	for i := range comments {
		comments[i] = trello.Comment{
			ID:             fmt.Sprintf("a%d", i),
			AuthorName:     "Alice",
			AuthorUsername: "alice",
			Text:           fmt.Sprintf("comment %d", i),
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}
	}
	return comments
}

func seedIssue(api *fakeGitHub) *models.IssueRef {
	is := &fakeIssue{number: 1, nodeID: "NODE1", title: "Card"}
	api.issues = append(api.issues, is)
	return &models.IssueRef{Number: 1, NodeID: "NODE1", Title: "Card"}
}

func TestBatcherChunksAtTwentyFive(t *testing.T) {
	api := newFakeGitHub()
	issue := seedIssue(api)
	batcher := NewCommentBatcher(api, time.UTC)

	out := batcher.Migrate(context.Background(), issue, makeComments(60))
	if out.Migrated != 60 || out.Skipped != 0 || out.Failed != 0 {
		t.Fatalf("outcome = %+v, want 60 migrated", out)
	}
	if len(api.batchCalls) != 3 {
		t.Fatalf("got %d batch calls, want 3", len(api.batchCalls))
	}
	for i, want := range []int{25, 25, 10} {
		if len(api.batchCalls[i]) != want {
			t.Errorf("batch %d carried %d comments, want %d", i, len(api.batchCalls[i]), want)
		}
	}
	if api.restCommentCalls != 0 {
		t.Errorf("unexpected REST fallback calls: %d", api.restCommentCalls)
	}
}

func TestBatcherSkipsExistingBodies(t *testing.T) {
	api := newFakeGitHub()
	issue := seedIssue(api)
	comments := makeComments(10)

	// the first four already live on the issue, rendered identically
	for _, c := range comments[:4] {
		issue.ExistingCommentBodies = append(issue.ExistingCommentBodies,
			utils.FormatCommentBody(c.AuthorName, c.AuthorUsername, c.Text, c.CreatedAt, time.UTC))
	}

	batcher := NewCommentBatcher(api, time.UTC)
	out := batcher.Migrate(context.Background(), issue, comments)
	if out.Skipped != 4 || out.Migrated != 6 || out.Failed != 0 {
		t.Fatalf("outcome = %+v, want 4 skipped and 6 migrated", out)
	}
}

func TestBatcherAllDuplicatesNoCalls(t *testing.T) {
	api := newFakeGitHub()
	issue := seedIssue(api)
	comments := makeComments(3)
	for _, c := range comments {
		issue.ExistingCommentBodies = append(issue.ExistingCommentBodies,
			utils.FormatCommentBody(c.AuthorName, c.AuthorUsername, c.Text, c.CreatedAt, time.UTC))
	}

	out := NewCommentBatcher(api, time.UTC).Migrate(context.Background(), issue, comments)
	if out.Skipped != 3 || out.Migrated != 0 {
		t.Fatalf("outcome = %+v, want all skipped", out)
	}
	if len(api.batchCalls) != 0 || api.restCommentCalls != 0 {
		t.Error("fully deduplicated card must not call the API")
	}
}

func TestBatcherFallsBackWithoutNodeID(t *testing.T) {
	api := newFakeGitHub()
	seedIssue(api)
	issue := &models.IssueRef{Number: 1, Title: "Card"} // no node id

	out := NewCommentBatcher(api, time.UTC).Migrate(context.Background(), issue, makeComments(3))
	if out.Migrated != 3 {
		t.Fatalf("outcome = %+v, want 3 migrated", out)
	}
	if len(api.batchCalls) != 0 {
		t.Error("fallback path must not use the batch mutation")
	}
	if api.restCommentCalls != 3 {
		t.Errorf("got %d REST calls, want 3", api.restCommentCalls)
	}
}

func TestBatcherStopsDispatchOnCancellation(t *testing.T) {
	api := newFakeGitHub()
	issue := seedIssue(api)

	ctx, cancel := context.WithCancel(context.Background())
	api.batchHook = func(bodies []string) error {
		cancel() // arrives while the first batch is in flight
		return nil
	}

	out := NewCommentBatcher(api, time.UTC).Migrate(ctx, issue, makeComments(60))
	if len(api.batchCalls) != 1 {
		t.Fatalf("dispatched %d batches after cancellation, want 1", len(api.batchCalls))
	}
	if out.Migrated != 25 {
		t.Errorf("migrated = %d, want the in-flight batch to land", out.Migrated)
	}
	if out.Failed != 0 {
		t.Errorf("failed = %d; unattempted comments must not be counted as failed", out.Failed)
	}
}

func TestBatcherFallbackStopsOnCancellation(t *testing.T) {
	api := newFakeGitHub()
	seedIssue(api)
	issue := &models.IssueRef{Number: 1, Title: "Card"} // no node id

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := NewCommentBatcher(api, time.UTC).Migrate(ctx, issue, makeComments(3))
	if api.restCommentCalls != 0 {
		t.Errorf("made %d REST calls after cancellation", api.restCommentCalls)
	}
	if out.Failed != 0 || out.Migrated != 0 {
		t.Errorf("outcome = %+v, want nothing attempted and nothing failed", out)
	}
}

func TestBatcherFailedBatchDoesNotStopLaterBatches(t *testing.T) {
	api := newFakeGitHub()
	issue := seedIssue(api)

	calls := 0
	api.batchHook = func(bodies []string) error {
		calls++
		if calls == 1 {
			return errors.New("502 from graphql")
		}
		return nil
	}

	out := NewCommentBatcher(api, time.UTC).Migrate(context.Background(), issue, makeComments(30))
	if out.Failed != 25 {
		t.Errorf("failed = %d, want the whole first batch", out.Failed)
	}
	if out.Migrated != 5 {
		t.Errorf("migrated = %d, want the second batch to land", out.Migrated)
	}
}
