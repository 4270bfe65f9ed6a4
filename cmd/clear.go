package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bmw-ece-ntust/trello-github-migration/pkg/config"
	"github.com/bmw-ece-ntust/trello-github-migration/pkg/logger"
	"github.com/bmw-ece-ntust/trello-github-migration/pkg/migration"
)

// NewClearCommand deletes the issues a migration created so a failed run can
// be retried from scratch. Destructive, so it asks for a typed confirmation
// unless --yes is given.
func NewClearCommand(cfg *config.GlobalConfig) *cobra.Command {
	var (
		boardFilter string
		skipConfirm bool
	)
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete imported issues from the target Project to reset a failed migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(cfg, boardFilter, skipConfirm)
		},
	}

	cmd.Flags().StringVar(&boardFilter, "board", "", "Clear only the config.yaml board with this name or id")
	cmd.Flags().BoolVar(&skipConfirm, "yes", false, "Skip the interactive confirmation")

	return cmd
}

func runClear(cfg *config.GlobalConfig, boardFilter string, skipConfirm bool) error {
	if !skipConfirm {
		fmt.Println("WARNING: this will DELETE every issue of the target repository that sits in the configured Project.")
		fmt.Println("It is intended to clean up a failed migration before retrying. Ensure you have backups.")
		fmt.Print("Type 'DELETE' to confirm: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil || strings.TrimSpace(line) != "DELETE" {
			return fmt.Errorf("aborted")
		}
	}

	ctx := context.Background()

	if cfg.ConfigFile == "" {
		return clearTarget(ctx, cfg, "", "")
	}
	boards, err := config.LoadBoards(cfg.ConfigFile)
	if err != nil {
		return err
	}
	matched := 0
	for _, board := range boards {
		if boardFilter != "" && board.Name != boardFilter && board.ID != boardFilter {
			continue
		}
		matched++
		logger.Info("Clearing board target", "board", board.Name)
		if err := clearTarget(ctx, cfg, board.GitHub.Repo, board.GitHub.Project); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			logger.Error("Cleanup failed", "board", board.Name, "error", err)
		}
	}
	if matched == 0 {
		return fmt.Errorf("no board matches %q", boardFilter)
	}
	return nil
}

func clearTarget(ctx context.Context, cfg *config.GlobalConfig, repo, projectURL string) error {
	client, err := buildClient(cfg, repo, projectURL)
	if err != nil {
		return err
	}

	owner, name := cfg.GitHubOwner, cfg.GitHubRepo
	if repo != "" {
		if owner, name, err = config.ParseRepo(repo); err != nil {
			return err
		}
	}

	out, err := migration.Clear(ctx, client, fmt.Sprintf("%s/%s", owner, name))
	if err != nil {
		return err
	}
	logger.Info("Cleanup finished",
		"deleted", out.Deleted, "skipped", out.Skipped, "failed", out.Failed)
	if out.Failed > 0 {
		return fmt.Errorf("%d issues could not be deleted", out.Failed)
	}
	return nil
}
