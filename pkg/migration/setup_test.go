package migration

import (
	"context"
	"errors"
	"testing"

	"github.com/bmw-ece-ntust/trello-github-migration/pkg/models"
)

func TestPreflight(t *testing.T) {
	api := newFakeGitHub()
	api.field.Options = []models.StatusOption{{ID: "OPT-To Do", Name: "To Do"}}

	field, err := Preflight(context.Background(), api)
	if err != nil {
		t.Fatalf("Preflight failed: %v", err)
	}
	if len(field.Options) != 1 {
		t.Errorf("got %d options, want the project's current field", len(field.Options))
	}
	if _, ok := api.labels[ImportLabel]; !ok {
		t.Error("import label should have been ensured")
	}
}

func TestPreflightAbortsOnAccessFailure(t *testing.T) {
	api := newFakeGitHub()
	api.verifyHook = func() error { return errors.New("401 bad credentials") }

	if _, err := Preflight(context.Background(), api); err == nil {
		t.Fatal("expected access failure to abort")
	}
	if len(api.labels) != 0 {
		t.Error("nothing should be written after a failed access check")
	}
}
