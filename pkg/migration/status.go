package migration

import (
	"context"
	"fmt"

	"github.com/bmw-ece-ntust/trello-github-migration/pkg/logger"
	"github.com/bmw-ece-ntust/trello-github-migration/pkg/models"
)

// StatusSynchronizer mirrors Trello list names onto the Project's Status
// single-select field and places issues under the matching option. The
// cached field is replaced wholesale after each option creation, so it is
// only safe to call from the engine's driving goroutine.
type StatusSynchronizer struct {
	api   GitHub
	field *models.StatusField
}

func NewStatusSynchronizer(api GitHub, field *models.StatusField) *StatusSynchronizer {
	return &StatusSynchronizer{api: api, field: field}
}

// EnsureOption returns the id of the status option named after the list,
// creating the option when the field does not have it yet.
func (s *StatusSynchronizer) EnsureOption(ctx context.Context, listName string) (string, error) {
	if id, ok := s.field.OptionID(listName); ok {
		return id, nil
	}
	logger.Info("Creating status option", "option", listName)
	refreshed, err := s.api.CreateStatusOption(ctx, s.field, listName)
	if err != nil {
		return "", fmt.Errorf("failed to create status option %q: %w", listName, err)
	}
	s.field = refreshed
	id, ok := s.field.OptionID(listName)
	if !ok {
		return "", fmt.Errorf("status option %q missing after creation", listName)
	}
	return id, nil
}

// AddItem adds the issue to the Project, returning the existing item when it
// is already there.
func (s *StatusSynchronizer) AddItem(ctx context.Context, issue *models.IssueRef) (*models.ProjectItemRef, error) {
	return s.api.AddProjectItem(ctx, issue)
}

// SetStatus assigns the option to the project item.
func (s *StatusSynchronizer) SetStatus(ctx context.Context, item *models.ProjectItemRef, optionID string) error {
	return s.api.SetItemStatus(ctx, item, s.field, optionID)
}
