package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/dukex/autoflow/pkg/models"
	"github.com/dukex/autoflow/pkg/persistence"
)

// AutomationRepository stores one JSON document per automation.
type AutomationRepository struct {
	dir string
}

// NewAutomationRepository creates a new automation repository under root.
func NewAutomationRepository(root string) *AutomationRepository {
	return &AutomationRepository{dir: filepath.Join(root, "automations")}
}

// GetAll returns all automations ordered by creation time, then ID.
func (r *AutomationRepository) GetAll(ctx context.Context) ([]*models.Automation, error) {
	ids, err := listIDs(r.dir)
	if err != nil {
		return nil, err
	}

	automations := make([]*models.Automation, 0, len(ids))

	for _, id := range ids {
		automation, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load automation %s: %w", id, err)
		}

		if automation != nil {
			automations = append(automations, automation)
		}
	}

	sort.SliceStable(automations, func(i, j int) bool {
		if automations[i].CreatedAt.Equal(automations[j].CreatedAt) {
			return automations[i].ID < automations[j].ID
		}

		return automations[i].CreatedAt.Before(automations[j].CreatedAt)
	})

	return automations, nil
}

func (r *AutomationRepository) GetByID(_ context.Context, id string) (*models.Automation, error) {
	var automation models.Automation

	found, err := readJSON(r.dir, id, &automation)
	if err != nil || !found {
		return nil, err
	}

	return &automation, nil
}

func (r *AutomationRepository) Save(_ context.Context, automation *models.Automation) error {
	return writeJSON(r.dir, automation.ID, automation)
}

func (r *AutomationRepository) Delete(_ context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(r.dir, id+".json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return persistence.NewAutomationError("Delete", id, persistence.ErrAutomationNotFound)
		}

		return fmt.Errorf("failed to delete automation %s: %w", id, err)
	}

	return nil
}
