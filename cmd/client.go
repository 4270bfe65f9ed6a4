package cmd

import (
	"fmt"

	"github.com/bmw-ece-ntust/trello-github-migration/pkg/config"
	"github.com/bmw-ece-ntust/trello-github-migration/pkg/github"
)

// buildClient assembles the rate-governed GitHub client for one target
// repository and Project from the global config.
func buildClient(cfg *config.GlobalConfig, repo, projectURL string) (*github.Client, error) {
	owner, name := cfg.GitHubOwner, cfg.GitHubRepo
	if repo != "" {
		var err error
		owner, name, err = config.ParseRepo(repo)
		if err != nil {
			return nil, err
		}
	}
	if owner == "" || name == "" {
		return nil, fmt.Errorf("a target repository is required (--github-owner/--github-repo or config.yaml)")
	}
	if projectURL == "" {
		projectURL = cfg.ProjectURL
	}
	if projectURL == "" {
		return nil, fmt.Errorf("a Project URL is required (--project-url or config.yaml)")
	}
	project, err := config.ParseProjectURL(projectURL)
	if err != nil {
		return nil, err
	}

	target := github.Target{
		Owner:             owner,
		Repo:              name,
		ProjectOwner:      project.Owner,
		ProjectOwnerIsOrg: project.OwnerIsOrg,
		ProjectNumber:     project.Number,
	}

	gov := github.NewGovernor()
	if cfg.GitHubToken != "" {
		return github.NewClientByPAT(cfg.GitHubToken, target, gov), nil
	}
	if cfg.GitHubAppID > 0 && cfg.GitHubAppInstallationID > 0 && cfg.GitHubAppPrivateKey != "" {
		return github.NewClientByApp(cfg.GitHubAppID, cfg.GitHubAppInstallationID, cfg.GitHubAppPrivateKey, target, gov), nil
	}
	return nil, fmt.Errorf("GitHub token or GitHub App settings are required")
}
