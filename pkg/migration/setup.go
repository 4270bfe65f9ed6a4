package migration

import (
	"context"
	"fmt"

	"github.com/bmw-ece-ntust/trello-github-migration/pkg/logger"
	"github.com/bmw-ece-ntust/trello-github-migration/pkg/models"
)

const (
	// ImportLabel marks every issue created by a migration run.
	ImportLabel      = "Trello Import"
	importLabelColor = "0E8A16"
	listLabelColor   = "EDEDED"
	labelDescription = "Imported from Trello"
)

// Preflight verifies the prerequisites shared by every card before any write
// happens: credentials and repository permissions, the Project's Status
// field, and the import label. Any failure here aborts the run.
func Preflight(ctx context.Context, api GitHub) (*models.StatusField, error) {
	if err := api.VerifyAccess(ctx); err != nil {
		return nil, fmt.Errorf("access verification failed: %w", err)
	}
	logger.Info("Repository access verified")

	field, err := api.StatusField(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project status field: %w", err)
	}
	logger.Info("Project status field resolved", "options", len(field.Options))

	if err := api.EnsureLabel(ctx, ImportLabel, importLabelColor, labelDescription); err != nil {
		return nil, fmt.Errorf("failed to ensure label %q: %w", ImportLabel, err)
	}
	return field, nil
}
