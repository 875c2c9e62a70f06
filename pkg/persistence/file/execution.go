package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dukex/autoflow/pkg/models"
)

// ExecutionRepository stores one JSON document per execution record.
type ExecutionRepository struct {
	dir string
}

// NewExecutionRepository creates a new execution repository under root.
func NewExecutionRepository(root string) *ExecutionRepository {
	return &ExecutionRepository{dir: filepath.Join(root, "executions")}
}

// GetAll returns every execution ordered by start time, then ID.
func (r *ExecutionRepository) GetAll(ctx context.Context) ([]*models.AutomationExecution, error) {
	ids, err := listIDs(r.dir)
	if err != nil {
		return nil, err
	}

	executions := make([]*models.AutomationExecution, 0, len(ids))

	for _, id := range ids {
		execution, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load execution %s: %w", id, err)
		}

		if execution != nil {
			executions = append(executions, execution)
		}
	}

	sort.SliceStable(executions, func(i, j int) bool {
		if executions[i].StartedAt.Equal(executions[j].StartedAt) {
			return executions[i].ID < executions[j].ID
		}

		return executions[i].StartedAt.Before(executions[j].StartedAt)
	})

	return executions, nil
}

func (r *ExecutionRepository) GetByID(_ context.Context, id string) (*models.AutomationExecution, error) {
	var execution models.AutomationExecution

	found, err := readJSON(r.dir, id, &execution)
	if err != nil || !found {
		return nil, err
	}

	return &execution, nil
}

func (r *ExecutionRepository) GetByAutomation(ctx context.Context, automationID string) ([]*models.AutomationExecution, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*models.AutomationExecution, 0)

	for _, execution := range all {
		if execution.AutomationID == automationID {
			result = append(result, execution)
		}
	}

	return result, nil
}

func (r *ExecutionRepository) Save(_ context.Context, execution *models.AutomationExecution) error {
	return writeJSON(r.dir, execution.ID, execution)
}

func (r *ExecutionRepository) DeleteByAutomation(ctx context.Context, automationID string) error {
	executions, err := r.GetByAutomation(ctx, automationID)
	if err != nil {
		return err
	}

	for _, execution := range executions {
		err := os.Remove(filepath.Join(r.dir, execution.ID+".json"))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete execution %s: %w", execution.ID, err)
		}
	}

	return nil
}
