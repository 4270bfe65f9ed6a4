package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bmw-ece-ntust/trello-github-migration/pkg/config"
	"github.com/bmw-ece-ntust/trello-github-migration/pkg/logger"
	"github.com/bmw-ece-ntust/trello-github-migration/pkg/migration"
	"github.com/bmw-ece-ntust/trello-github-migration/pkg/trello"
)

func NewMigrateCommand(cfg *config.GlobalConfig) *cobra.Command {
	var migrateConfig config.MigrateConfig
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate one or more Trello board snapshots to GitHub",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cfg, migrateConfig)
		},
	}

	// Migrate command specific flags
	cmd.Flags().StringVar(&migrateConfig.SnapshotPath, "snapshot", "", "Path to a Trello board backup JSON file")
	cmd.Flags().StringVar(&migrateConfig.BoardFilter, "board", "", "Migrate only the config.yaml board with this name or id")
	cmd.Flags().StringSliceVar(&migrateConfig.ImportLists, "lists", nil, "Migrate only these Trello lists")
	cmd.Flags().IntVar(&migrateConfig.MaxWorkers, "max-workers", 0, "Max cards with comment writes in flight at once")

	return cmd
}

func runMigration(cfg *config.GlobalConfig, migrateConfig config.MigrateConfig) error {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// First signal stops dispatching new cards and lets in-flight work
	// drain; a second one exits immediately.
	signalChan := make(chan os.Signal, 2)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalChan
		logger.Info("Received interrupt signal, finishing in-flight work...")
		cancel()
		<-signalChan
		logger.Fatal("Forced shutdown")
	}()

	if migrateConfig.SnapshotPath != "" {
		return runBoard(ctx, cfg, loc, migrateConfig.SnapshotPath, "", "", migrateConfig.ImportLists, migrateConfig.MaxWorkers)
	}

	if cfg.ConfigFile == "" {
		return fmt.Errorf("either --snapshot or --config is required")
	}
	boards, err := config.LoadBoards(cfg.ConfigFile)
	if err != nil {
		return err
	}
	if len(boards) == 0 {
		return fmt.Errorf("no trello_boards entries in %s", cfg.ConfigFile)
	}

	matched := 0
	var failed []string
	for _, board := range boards {
		if migrateConfig.BoardFilter != "" && board.Name != migrateConfig.BoardFilter && board.ID != migrateConfig.BoardFilter {
			continue
		}
		matched++
		logger.Info("Migrating board", "board", board.Name)
		lists := board.ImportLists
		if len(migrateConfig.ImportLists) > 0 {
			lists = migrateConfig.ImportLists
		}
		err := runBoard(ctx, cfg, loc, board.BackupFile, board.GitHub.Repo, board.GitHub.Project, lists, migrateConfig.MaxWorkers)
		if errors.Is(err, context.Canceled) {
			return err
		}
		if err != nil {
			logger.Error("Board migration failed", "board", board.Name, "error", err)
			failed = append(failed, board.Name)
		}
	}
	if matched == 0 {
		return fmt.Errorf("no board matches %q", migrateConfig.BoardFilter)
	}
	if len(failed) > 0 {
		return fmt.Errorf("migration failed for boards: %v", failed)
	}
	logger.Info("Migration completed successfully!")
	return nil
}

func runBoard(ctx context.Context, cfg *config.GlobalConfig, loc *time.Location, snapshotPath, repo, projectURL string, importLists []string, maxWorkers int) error {
	snapshot, err := trello.Load(snapshotPath)
	if err != nil {
		return err
	}
	if len(importLists) > 0 {
		snapshot = snapshot.FilterLists(importLists)
	}

	client, err := buildClient(cfg, repo, projectURL)
	if err != nil {
		return err
	}

	field, err := migration.Preflight(ctx, client)
	if err != nil {
		return err
	}

	engine := migration.NewEngine(client, field, migration.Options{
		MaxCommentWorkers: maxWorkers,
		Timezone:          loc,
	})
	summary, err := engine.Run(ctx, snapshot)
	if err != nil {
		return err
	}
	if summary.Failed > 0 || summary.CommentsFailed > 0 {
		return fmt.Errorf("%d cards and %d comments failed to migrate", summary.Failed, summary.CommentsFailed)
	}
	return nil
}
