package cmd

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bmw-ece-ntust/trello-github-migration/pkg/config"
	"github.com/bmw-ece-ntust/trello-github-migration/pkg/logger"
)

func NewRootCommand() *cobra.Command {
	var cfg config.GlobalConfig

	rootCmd := &cobra.Command{
		Use:   "trello-github-migration",
		Short: "Migrate Trello board snapshots into GitHub issues and Projects",
		Long: `Migrate Trello board snapshots into GitHub issues and Projects.
This tool performs:
- Issue creation for each open Trello card, idempotent across runs
- Batched migration of card comments via the GraphQL API
- Mirroring of Trello list names onto a Project's Status field`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.GitHubToken, "github-token", "", "GitHub API token (or set GITHUB_TOKEN env)")
	rootCmd.PersistentFlags().IntVar(&cfg.GitHubAppID, "github-app-id", 0, "GitHub APP ID (or set GITHUB_APP_ID env)")
	rootCmd.PersistentFlags().IntVar(&cfg.GitHubAppInstallationID, "github-app-installation-id", 0, "GitHub APP Installation ID (or set GITHUB_APP_INSTALLATION_ID env)")
	rootCmd.PersistentFlags().StringVar(&cfg.GitHubAppPrivateKey, "github-app-private-key", "", "GitHub APP private key (or set GITHUB_APP_PRIVATE_KEY env)")
	rootCmd.PersistentFlags().BoolVar(&cfg.GitHubAppPrivateKeyAsFile, "github-app-private-key-as-file", false, "GitHub APP private key as file")
	rootCmd.PersistentFlags().StringVar(&cfg.GitHubOwner, "github-owner", "", "GitHub owner (username or organization)")
	rootCmd.PersistentFlags().StringVar(&cfg.GitHubRepo, "github-repo", "", "GitHub repository name")
	rootCmd.PersistentFlags().StringVar(&cfg.ProjectURL, "project-url", "", "GitHub Project URL, e.g. https://github.com/orgs/acme/projects/7 (or set GITHUB_PROJECT_URL env)")
	rootCmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", "", "Board config file (config.yaml)")
	rootCmd.PersistentFlags().StringVar(&cfg.Timezone, "timezone", "UTC", "Timezone for rendering comment timestamps")
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "info", "Log level (debug, info, warn, error, fatal)")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		// .env is optional; flags and real env still win
		_ = godotenv.Load()

		// Use environment variables if flags are not provided
		if cfg.GitHubToken == "" {
			cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
		}
		if cfg.GitHubAppID == 0 {
			cfg.GitHubAppID, _ = strconv.Atoi(os.Getenv("GITHUB_APP_ID"))
		}
		if cfg.GitHubAppInstallationID == 0 {
			cfg.GitHubAppInstallationID, _ = strconv.Atoi(os.Getenv("GITHUB_APP_INSTALLATION_ID"))
		}
		if cfg.GitHubAppPrivateKey == "" {
			cfg.GitHubAppPrivateKey = os.Getenv("GITHUB_APP_PRIVATE_KEY")
		}
		if cfg.GitHubOwner == "" {
			cfg.GitHubOwner = os.Getenv("GITHUB_OWNER")
		}
		if cfg.GitHubRepo == "" {
			cfg.GitHubRepo = os.Getenv("GITHUB_REPO")
		}
		if cfg.ProjectURL == "" {
			cfg.ProjectURL = os.Getenv("GITHUB_PROJECT_URL")
		}
		if cfg.GitHubAppPrivateKeyAsFile {
			privateKey, err := os.ReadFile(cfg.GitHubAppPrivateKey)
			if err != nil {
				logger.Fatal("could not read private key", "path", cfg.GitHubAppPrivateKey, "error", err)
			}
			cfg.GitHubAppPrivateKey = string(privateKey)
		}

		if cfg.LogLevel != "" {
			logger.SetLevel(cfg.LogLevel)
		}
	}

	// Add subcommands
	rootCmd.AddCommand(NewMigrateCommand(&cfg))
	rootCmd.AddCommand(NewVerifyCommand(&cfg))
	rootCmd.AddCommand(NewClearCommand(&cfg))

	return rootCmd
}
