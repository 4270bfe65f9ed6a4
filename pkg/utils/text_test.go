package utils

import (
	"strings"
	"testing"
	"time"
)

func TestTruncateText(t *testing.T) {
	if got := TruncateText("short", 10); got != "short" {
		t.Errorf("TruncateText = %q, want unchanged", got)
	}

	long := strings.Repeat("x", 300)
	got := TruncateText(long, MaxIssueTitleLength)
	if len([]rune(got)) != MaxIssueTitleLength {
		t.Errorf("truncated length = %d, want %d", len([]rune(got)), MaxIssueTitleLength)
	}
	if !strings.HasSuffix(got, TruncateSuffix) {
		t.Errorf("missing truncation marker: %q", got[len(got)-20:])
	}
}

func TestFormatCommentBody(t *testing.T) {
	at := time.Date(2023, 5, 1, 10, 30, 0, 0, time.UTC)

	got := FormatCommentBody("Alice Smith", "alice", "hello there", at, time.UTC)
	want := "> **Alice Smith** (@alice) on 2023-05-01 10:30:00:\n> hello there"
	if got != want {
		t.Errorf("FormatCommentBody =\n%q\nwant\n%q", got, want)
	}

	// no username
	got = FormatCommentBody("Unknown", "", "hi", at, time.UTC)
	if strings.Contains(got, "(@") {
		t.Errorf("unexpected username marker: %q", got)
	}

	// every line of a multi-line comment stays quoted
	got = FormatCommentBody("Alice Smith", "alice", "line one\nline two", at, time.UTC)
	for _, line := range strings.Split(got, "\n") {
		if !strings.HasPrefix(line, "> ") {
			t.Errorf("unquoted line %q in %q", line, got)
		}
	}
}

func TestFormatCommentBodyIsStable(t *testing.T) {
	at := time.Date(2023, 5, 1, 10, 30, 0, 0, time.UTC)
	a := FormatCommentBody("Alice", "alice", "same text", at, time.UTC)
	b := FormatCommentBody("Alice", "alice", "same text", at, time.UTC)
	if a != b {
		t.Error("rendering must be deterministic, it drives duplicate detection")
	}
}

func TestFormatIssueBody(t *testing.T) {
	got := FormatIssueBody("the description", "To Do")
	if !strings.HasPrefix(got, "the description") {
		t.Errorf("body should start with the description: %q", got)
	}
	if !strings.Contains(got, "*Imported from Trello List: To Do*") {
		t.Errorf("missing import footer: %q", got)
	}
}
