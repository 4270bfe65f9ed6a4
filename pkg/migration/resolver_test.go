package migration

import (
	"context"
	"testing"
)

func TestResolveMissingIssue(t *testing.T) {
	resolver := NewIssueResolver(newFakeGitHub())
	issue, err := resolver.Resolve(context.Background(), "Nothing here")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if issue != nil {
		t.Fatalf("got issue #%d, want nil", issue.Number)
	}
}

func TestResolveLoadsExistingComments(t *testing.T) {
	api := newFakeGitHub()
	api.issues = append(api.issues, &fakeIssue{
		number:   7,
		nodeID:   "NODE7",
		title:    "Fix the build",
		comments: []string{"first", "second"},
	})

	resolver := NewIssueResolver(api)
	issue, err := resolver.Resolve(context.Background(), "  Fix the build  ")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if issue == nil {
		t.Fatal("trimmed title should still match")
	}
	if issue.Number != 7 || issue.NodeID != "NODE7" {
		t.Errorf("resolved issue #%d node %q", issue.Number, issue.NodeID)
	}
	if len(issue.ExistingCommentBodies) != 2 {
		t.Errorf("got %d existing comments, want 2", len(issue.ExistingCommentBodies))
	}
	if !issue.HasCommentBody("second") {
		t.Error("HasCommentBody should see loaded comments")
	}
}
