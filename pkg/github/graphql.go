package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bmw-ece-ntust/trello-github-migration/pkg/logger"
	"github.com/google/go-github/v70/github"
)

// AddCommentBatch writes all bodies to an issue in a single GraphQL request,
// one aliased addComment mutation per body. githubv4 cannot express a
// dynamically sized alias list, so the document is built by hand and posted
// with the shared authenticated client.
func (c *Client) AddCommentBatch(ctx context.Context, issueNodeID string, bodies []string) error {
	if len(bodies) == 0 {
		return nil
	}

	var doc strings.Builder
	variables := make(map[string]interface{}, len(bodies))
	doc.WriteString("mutation(")
	for i := range bodies {
		if i > 0 {
			doc.WriteString(", ")
		}
		fmt.Fprintf(&doc, "$input%d: AddCommentInput!", i)
	}
	doc.WriteString(") {")
	for i, body := range bodies {
		fmt.Fprintf(&doc, " c%d: addComment(input: $input%d) { clientMutationId }", i, i)
		variables[fmt.Sprintf("input%d", i)] = map[string]string{
			"subjectId": issueNodeID,
			"body":      body,
		}
	}
	doc.WriteString(" }")

	logger.Debug("Dispatching comment batch", "issue_node", issueNodeID, "size", len(bodies))
	return c.retry.Do(ctx, func() error {
		if err := c.gov.BeforeCall(ctx, SurfaceGraphQL); err != nil {
			return err
		}
		return c.postGraphQL(ctx, doc.String(), variables)
	})
}

func (c *Client) postGraphQL(ctx context.Context, query string, variables map[string]interface{}) error {
	payload, err := json.Marshal(map[string]interface{}{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("failed to encode graphql payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.updateQuotaFromHeaders(SurfaceGraphQL, resp.Header)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read graphql response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &github.ErrorResponse{Response: resp, Message: strings.TrimSpace(string(body))}
	}

	var out struct {
		Errors []struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("invalid graphql response: %w", err)
	}
	if len(out.Errors) > 0 {
		if out.Errors[0].Type == "RATE_LIMITED" {
			return fmt.Errorf("%w: %s", errGraphQLRateLimited, out.Errors[0].Message)
		}
		messages := make([]string, len(out.Errors))
		for i, e := range out.Errors {
			messages[i] = e.Message
		}
		return fmt.Errorf("graphql errors: %s", strings.Join(messages, "; "))
	}
	return nil
}

func (c *Client) updateQuotaFromHeaders(s Surface, h http.Header) {
	remaining, err := strconv.Atoi(h.Get("X-Ratelimit-Remaining"))
	if err != nil {
		return
	}
	resetUnix, err := strconv.ParseInt(h.Get("X-Ratelimit-Reset"), 10, 64)
	if err != nil {
		return
	}
	c.gov.AfterCall(s, remaining, time.Unix(resetUnix, 0))
}
