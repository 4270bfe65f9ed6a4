package utils

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// GitHub text length limits
	// https://docs.github.com/en/rest/issues/issues
	MaxIssueTitleLength = 256
	MaxIssueBodyLength  = 65536
	MaxCommentLength    = 65536

	TruncateSuffix = "... [truncated]"
)

// TruncateText shortens text to at most maxLength runes, appending a marker
// when anything was cut.
func TruncateText(text string, maxLength int) string {
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}

	availableLength := maxLength - utf8.RuneCountInString(TruncateSuffix)
	runes := []rune(text)
	if availableLength <= 0 {
		return string(runes[:maxLength])
	}
	return string(runes[:availableLength]) + TruncateSuffix
}

// FormatCommentBody renders a Trello comment as a quoted GitHub comment:
//
//	> **Full Name** (@username) on 2006-01-02 15:04:05:
//	> comment text
//
// The same rendering is used for writing and for duplicate detection, so the
// format must stay stable across runs.
func FormatCommentBody(authorName, authorUsername, text string, createdAt time.Time, loc *time.Location) string {
	header := fmt.Sprintf("**%s**", authorName)
	if authorUsername != "" {
		header += fmt.Sprintf(" (@%s)", authorUsername)
	}
	if loc == nil {
		loc = time.UTC
	}
	header += " on " + createdAt.In(loc).Format("2006-01-02 15:04:05")

	quoted := strings.ReplaceAll(strings.TrimSpace(text), "\n", "\n> ")
	body := fmt.Sprintf("> %s:\n> %s", header, quoted)
	return TruncateText(body, MaxCommentLength)
}

// FormatIssueBody renders the issue body for a card: description plus an
// import footer naming the originating list.
func FormatIssueBody(description, listName string) string {
	body := fmt.Sprintf("%s\n\n---\n*Imported from Trello List: %s*", description, listName)
	return TruncateText(body, MaxIssueBodyLength)
}
