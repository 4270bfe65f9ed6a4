package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bmw-ece-ntust/trello-github-migration/pkg/config"
	"github.com/bmw-ece-ntust/trello-github-migration/pkg/logger"
	"github.com/bmw-ece-ntust/trello-github-migration/pkg/migration"
)

// NewVerifyCommand runs the same preflight a migration would: credentials,
// repository permissions, the Project's Status field, and the import label.
func NewVerifyCommand(cfg *config.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify GitHub access and the target Project without migrating",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient(cfg, "", "")
			if err != nil {
				return err
			}
			field, err := migration.Preflight(context.Background(), client)
			if err != nil {
				return err
			}
			for _, opt := range field.Options {
				logger.Info("Status option", "name", opt.Name, "id", opt.ID)
			}
			logger.Info("Verification succeeded")
			return nil
		},
	}
}
