package github

import (
	"context"
	"fmt"

	"github.com/bmw-ece-ntust/trello-github-migration/pkg/logger"
	"github.com/bmw-ece-ntust/trello-github-migration/pkg/models"
	"github.com/shurcooL/githubv4"
)

// optionColors is the palette cycled through when new status options are
// created for imported lists.
var optionColors = []githubv4.ProjectV2SingleSelectFieldOptionColor{
	githubv4.ProjectV2SingleSelectFieldOptionColorBlue,
	githubv4.ProjectV2SingleSelectFieldOptionColorGreen,
	githubv4.ProjectV2SingleSelectFieldOptionColorYellow,
	githubv4.ProjectV2SingleSelectFieldOptionColorOrange,
	githubv4.ProjectV2SingleSelectFieldOptionColorRed,
	githubv4.ProjectV2SingleSelectFieldOptionColorPurple,
	githubv4.ProjectV2SingleSelectFieldOptionColorGray,
}

const optionDescription = "Trello Import List"

// resolveProjectID resolves the Project's GraphQL node id from its owner and
// number, caching the result for the client's lifetime.
func (c *Client) resolveProjectID(ctx context.Context) (string, error) {
	if c.projectID != "" {
		return c.projectID, nil
	}

	vars := map[string]interface{}{
		"login":  githubv4.String(c.target.ProjectOwner),
		"number": githubv4.Int(c.target.ProjectNumber),
	}

	var id githubv4.ID
	if c.target.ProjectOwnerIsOrg {
		var query struct {
			Organization struct {
				ProjectV2 struct {
					ID githubv4.ID
				} `graphql:"projectV2(number: $number)"`
			} `graphql:"organization(login: $login)"`
		}
		if err := c.v4Call(ctx, func() error { return c.v4.Query(ctx, &query, vars) }); err != nil {
			return "", fmt.Errorf("failed to resolve org project %s/%d: %w", c.target.ProjectOwner, c.target.ProjectNumber, err)
		}
		id = query.Organization.ProjectV2.ID
	} else {
		var query struct {
			User struct {
				ProjectV2 struct {
					ID githubv4.ID
				} `graphql:"projectV2(number: $number)"`
			} `graphql:"user(login: $login)"`
		}
		if err := c.v4Call(ctx, func() error { return c.v4.Query(ctx, &query, vars) }); err != nil {
			return "", fmt.Errorf("failed to resolve user project %s/%d: %w", c.target.ProjectOwner, c.target.ProjectNumber, err)
		}
		id = query.User.ProjectV2.ID
	}

	c.projectID = fmt.Sprintf("%v", id)
	if c.projectID == "" || c.projectID == "<nil>" {
		return "", fmt.Errorf("project %s/%d not found", c.target.ProjectOwner, c.target.ProjectNumber)
	}
	return c.projectID, nil
}

// StatusField fetches the Project's single-select "Status" field and its
// current options.
func (c *Client) StatusField(ctx context.Context) (*models.StatusField, error) {
	projectID, err := c.resolveProjectID(ctx)
	if err != nil {
		return nil, err
	}

	var query struct {
		Node struct {
			ProjectV2 struct {
				Field struct {
					SingleSelect struct {
						ID      githubv4.ID
						Options []struct {
							ID          githubv4.String
							Name        githubv4.String
							Color       githubv4.String
							Description githubv4.String
						}
					} `graphql:"... on ProjectV2SingleSelectField"`
				} `graphql:"field(name: \"Status\")"`
			} `graphql:"... on ProjectV2"`
		} `graphql:"node(id: $projectId)"`
	}
	vars := map[string]interface{}{"projectId": githubv4.ID(projectID)}

	if err := c.v4Call(ctx, func() error { return c.v4.Query(ctx, &query, vars) }); err != nil {
		return nil, fmt.Errorf("failed to fetch project status field: %w", err)
	}

	fieldID := fmt.Sprintf("%v", query.Node.ProjectV2.Field.SingleSelect.ID)
	if fieldID == "" || fieldID == "<nil>" {
		return nil, fmt.Errorf("project %s/%d has no single-select Status field", c.target.ProjectOwner, c.target.ProjectNumber)
	}

	field := &models.StatusField{ProjectID: projectID, FieldID: fieldID}
	for _, opt := range query.Node.ProjectV2.Field.SingleSelect.Options {
		field.Options = append(field.Options, models.StatusOption{
			ID:          string(opt.ID),
			Name:        string(opt.Name),
			Color:       string(opt.Color),
			Description: string(opt.Description),
		})
	}
	return field, nil
}

// CreateStatusOption adds a single-select option named after a Trello list.
// The update mutation is set-style, so existing options are resent alongside
// the new one; options are then re-fetched for authoritative ids.
func (c *Client) CreateStatusOption(ctx context.Context, field *models.StatusField, name string) (*models.StatusField, error) {
	if _, ok := field.OptionID(name); ok {
		return field, nil
	}

	logger.Info("Creating project status option", "name", name)

	options := make([]githubv4.ProjectV2SingleSelectFieldOptionInput, 0, len(field.Options)+1)
	for _, opt := range field.Options {
		options = append(options, githubv4.ProjectV2SingleSelectFieldOptionInput{
			Name:        githubv4.String(opt.Name),
			Color:       githubv4.ProjectV2SingleSelectFieldOptionColor(opt.Color),
			Description: githubv4.String(opt.Description),
		})
	}
	options = append(options, githubv4.ProjectV2SingleSelectFieldOptionInput{
		Name:        githubv4.String(name),
		Color:       optionColors[len(field.Options)%len(optionColors)],
		Description: githubv4.String(optionDescription),
	})

	var mutation struct {
		UpdateProjectV2Field struct {
			ProjectV2Field struct {
				Typename githubv4.String `graphql:"__typename"`
			}
		} `graphql:"updateProjectV2Field(input: $input)"`
	}
	input := githubv4.UpdateProjectV2FieldInput{
		FieldID:             githubv4.ID(field.FieldID),
		SingleSelectOptions: &options,
	}
	if err := c.v4Call(ctx, func() error { return c.v4.Mutate(ctx, &mutation, input, nil) }); err != nil {
		return nil, fmt.Errorf("failed to create status option %q: %w", name, err)
	}

	refreshed, err := c.StatusField(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to re-fetch status options: %w", err)
	}
	if _, ok := refreshed.OptionID(name); !ok {
		return nil, fmt.Errorf("status option %q missing after creation", name)
	}
	return refreshed, nil
}

// ListProjectIssues pages through the Project's items and returns the ones
// whose content is an issue. Draft items and pull requests are dropped.
func (c *Client) ListProjectIssues(ctx context.Context) ([]models.ProjectIssue, error) {
	projectID, err := c.resolveProjectID(ctx)
	if err != nil {
		return nil, err
	}

	var issues []models.ProjectIssue
	var cursor *githubv4.String
	for {
		var query struct {
			Node struct {
				ProjectV2 struct {
					Items struct {
						PageInfo struct {
							HasNextPage githubv4.Boolean
							EndCursor   githubv4.String
						}
						Nodes []struct {
							ID      githubv4.ID
							Content struct {
								Issue struct {
									ID         githubv4.ID
									Number     githubv4.Int
									Title      githubv4.String
									Repository struct {
										NameWithOwner githubv4.String
									}
								} `graphql:"... on Issue"`
							}
						}
					} `graphql:"items(first: 100, after: $cursor)"`
				} `graphql:"... on ProjectV2"`
			} `graphql:"node(id: $projectId)"`
		}
		vars := map[string]interface{}{
			"projectId": githubv4.ID(projectID),
			"cursor":    cursor,
		}
		if err := c.v4Call(ctx, func() error { return c.v4.Query(ctx, &query, vars) }); err != nil {
			return nil, fmt.Errorf("failed to list project items: %w", err)
		}

		for _, node := range query.Node.ProjectV2.Items.Nodes {
			issue := node.Content.Issue
			if issue.Number == 0 {
				continue
			}
			issues = append(issues, models.ProjectIssue{
				ItemID:      fmt.Sprintf("%v", node.ID),
				IssueNodeID: fmt.Sprintf("%v", issue.ID),
				Number:      int(issue.Number),
				Title:       string(issue.Title),
				Repository:  string(issue.Repository.NameWithOwner),
			})
		}
		if !query.Node.ProjectV2.Items.PageInfo.HasNextPage {
			break
		}
		cursor = githubv4.NewString(query.Node.ProjectV2.Items.PageInfo.EndCursor)
	}
	return issues, nil
}

// DeleteIssue permanently deletes an issue; its project item disappears with
// it. Requires the credential to have delete rights on the repository.
func (c *Client) DeleteIssue(ctx context.Context, issueNodeID string) error {
	var mutation struct {
		DeleteIssue struct {
			Repository struct {
				Name githubv4.String
			}
		} `graphql:"deleteIssue(input: $input)"`
	}
	input := githubv4.DeleteIssueInput{IssueID: githubv4.ID(issueNodeID)}
	if err := c.v4Call(ctx, func() error { return c.v4.Mutate(ctx, &mutation, input, nil) }); err != nil {
		return fmt.Errorf("failed to delete issue %s: %w", issueNodeID, err)
	}
	return nil
}

// AddProjectItem adds an issue to the Project. GitHub returns the existing
// item when the issue is already present, so the call is idempotent.
func (c *Client) AddProjectItem(ctx context.Context, issue *models.IssueRef) (*models.ProjectItemRef, error) {
	projectID, err := c.resolveProjectID(ctx)
	if err != nil {
		return nil, err
	}

	var mutation struct {
		AddProjectV2ItemByID struct {
			Item struct {
				ID githubv4.ID
			}
		} `graphql:"addProjectV2ItemById(input: $input)"`
	}
	input := githubv4.AddProjectV2ItemByIdInput{
		ProjectID: githubv4.ID(projectID),
		ContentID: githubv4.ID(issue.NodeID),
	}
	if err := c.v4Call(ctx, func() error { return c.v4.Mutate(ctx, &mutation, input, nil) }); err != nil {
		return nil, fmt.Errorf("failed to add issue #%d to project: %w", issue.Number, err)
	}

	return &models.ProjectItemRef{
		ItemID:      fmt.Sprintf("%v", mutation.AddProjectV2ItemByID.Item.ID),
		IssueNumber: issue.Number,
	}, nil
}

// SetItemStatus assigns a status option to a project item. Setting the same
// value again is a server-side no-op.
func (c *Client) SetItemStatus(ctx context.Context, item *models.ProjectItemRef, field *models.StatusField, optionID string) error {
	var mutation struct {
		UpdateProjectV2ItemFieldValue struct {
			ProjectV2Item struct {
				ID githubv4.ID
			}
		} `graphql:"updateProjectV2ItemFieldValue(input: $input)"`
	}
	input := githubv4.UpdateProjectV2ItemFieldValueInput{
		ProjectID: githubv4.ID(field.ProjectID),
		ItemID:    githubv4.ID(item.ItemID),
		FieldID:   githubv4.ID(field.FieldID),
		Value: githubv4.ProjectV2FieldValue{
			SingleSelectOptionID: githubv4.NewString(githubv4.String(optionID)),
		},
	}
	if err := c.v4Call(ctx, func() error { return c.v4.Mutate(ctx, &mutation, input, nil) }); err != nil {
		return fmt.Errorf("failed to set status of item %s: %w", item.ItemID, err)
	}
	return nil
}
