package github

import (
	"context"
	"net/http"

	"github.com/bmw-ece-ntust/trello-github-migration/pkg/logger"
	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v70/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

const defaultGraphQLURL = "https://api.github.com/graphql"

// Target names the repository and Project a client writes to.
type Target struct {
	Owner             string
	Repo              string
	ProjectOwner      string
	ProjectOwnerIsOrg bool
	ProjectNumber     int
}

// Client wraps the GitHub REST and GraphQL clients behind one rate-governed
// surface bound to a single migration target.
type Client struct {
	inner      *github.Client
	v4         *githubv4.Client
	hc         *http.Client
	gov        *Governor
	retry      RetryPolicy
	target     Target
	graphqlURL string

	// projectID is resolved lazily from the target's owner and number.
	projectID string
}

// NewClientByPAT creates a client authenticated with a personal access token.
func NewClientByPAT(token string, target Target, gov *Governor) *Client {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return newClient(tc, target, gov)
}

// NewClientByApp creates a client authenticated as a GitHub App installation.
func NewClientByApp(appID, installationID int, privateKey string, target Target, gov *Governor) *Client {
	itr, err := ghinstallation.New(http.DefaultTransport, int64(appID), int64(installationID), []byte(privateKey))
	if err != nil {
		logger.Fatal("failed to create gh client", "error", err)
	}
	return newClient(&http.Client{Transport: itr}, target, gov)
}

func newClient(hc *http.Client, target Target, gov *Governor) *Client {
	if gov == nil {
		gov = NewGovernor()
	}
	return &Client{
		inner:      github.NewClient(hc),
		v4:         githubv4.NewClient(hc),
		hc:         hc,
		gov:        gov,
		retry:      DefaultRetryPolicy(),
		target:     target,
		graphqlURL: defaultGraphQLURL,
	}
}

// restCall runs one REST operation through the governor and the shared retry
// policy, feeding rate headers back into the governor.
func (c *Client) restCall(ctx context.Context, op func() (*github.Response, error)) error {
	return c.retry.Do(ctx, func() error {
		if err := c.gov.BeforeCall(ctx, SurfaceREST); err != nil {
			return err
		}
		resp, err := op()
		if resp != nil && resp.Rate.Limit > 0 {
			c.gov.AfterCall(SurfaceREST, resp.Rate.Remaining, resp.Rate.Reset.Time)
		}
		return err
	})
}

// v4Call runs one githubv4 operation through the governor and retry policy.
func (c *Client) v4Call(ctx context.Context, op func() error) error {
	return c.retry.Do(ctx, func() error {
		if err := c.gov.BeforeCall(ctx, SurfaceGraphQL); err != nil {
			return err
		}
		return op()
	})
}
