package migration

import (
	"context"
	"errors"
	"testing"

	"github.com/bmw-ece-ntust/trello-github-migration/pkg/models"
)

func seedProjectIssues(api *fakeGitHub) {
	api.projectIssues = []models.ProjectIssue{
		{ItemID: "ITEM1", IssueNodeID: "NODE1", Number: 1, Title: "First card", Repository: "acme/widgets"},
		{ItemID: "ITEM2", IssueNodeID: "NODE2", Number: 2, Title: "Second card", Repository: "acme/widgets"},
		{ItemID: "ITEM3", IssueNodeID: "NODE3", Number: 9, Title: "Roadmap epic", Repository: "acme/other-repo"},
	}
}

func TestClearDeletesOnlyTargetRepoIssues(t *testing.T) {
	api := newFakeGitHub()
	seedProjectIssues(api)

	out, err := Clear(context.Background(), api, "ACME/Widgets")
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if out.Deleted != 2 || out.Skipped != 1 || out.Failed != 0 {
		t.Fatalf("outcome = %+v, want 2 deleted and the external item skipped", out)
	}
	if len(api.deletedNodes) != 2 {
		t.Fatalf("deleted nodes = %v", api.deletedNodes)
	}
	for _, node := range api.deletedNodes {
		if node == "NODE3" {
			t.Error("the external repository's issue must never be deleted")
		}
	}
}

func TestClearContinuesPastFailedDeletion(t *testing.T) {
	api := newFakeGitHub()
	seedProjectIssues(api)
	api.deleteHook = func(nodeID string) error {
		if nodeID == "NODE1" {
			return errors.New("403 insufficient scopes")
		}
		return nil
	}

	out, err := Clear(context.Background(), api, "acme/widgets")
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if out.Deleted != 1 || out.Failed != 1 {
		t.Fatalf("outcome = %+v, want the pass to continue past the failure", out)
	}
}

func TestClearStopsOnCancellation(t *testing.T) {
	api := newFakeGitHub()
	seedProjectIssues(api)
	ctx, cancel := context.WithCancel(context.Background())
	api.deleteHook = func(nodeID string) error {
		cancel()
		return nil
	}

	out, err := Clear(ctx, api, "acme/widgets")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if out.Deleted != 1 {
		t.Errorf("deleted = %d, want only the in-flight deletion", out.Deleted)
	}
}
