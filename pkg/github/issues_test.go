package github

import (
	"strings"
	"testing"
)

func TestIssueSearchQuery(t *testing.T) {
	got := issueSearchQuery("acme", "widgets", "Fix the build")
	want := `repo:acme/widgets is:issue in:title "Fix the build"`
	if got != want {
		t.Errorf("query = %q, want %q", got, want)
	}
}

func TestIssueSearchQuerySanitizesPhrase(t *testing.T) {
	got := issueSearchQuery("acme", "widgets", `Say "hello" \ world`)
	if strings.Contains(got, `\"`) || strings.Contains(got, `\\`) {
		t.Errorf("query carries Go escapes the search parser cannot read: %q", got)
	}
	// exactly the two enclosing phrase quotes survive
	if strings.Count(got, `"`) != 2 {
		t.Errorf("query = %q, want only the enclosing phrase quotes", got)
	}
}
