// Package persistence provides the storage abstraction for automations and
// their execution history.
package persistence

import (
	"context"

	"github.com/dukex/autoflow/pkg/models"
)

// Persistence groups the repositories of one storage backend.
type Persistence interface {
	AutomationRepository() AutomationRepository
	ExecutionRepository() ExecutionRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// AutomationRepository stores automations. GetByID returns (nil, nil) when the
// automation does not exist. GetAll returns automations in creation order.
type AutomationRepository interface {
	GetAll(ctx context.Context) ([]*models.Automation, error)
	GetByID(ctx context.Context, id string) (*models.Automation, error)
	Save(ctx context.Context, automation *models.Automation) error
	Delete(ctx context.Context, id string) error
}

// ExecutionRepository stores execution records. GetByID returns (nil, nil)
// when the execution does not exist.
type ExecutionRepository interface {
	GetAll(ctx context.Context) ([]*models.AutomationExecution, error)
	GetByID(ctx context.Context, id string) (*models.AutomationExecution, error)
	GetByAutomation(ctx context.Context, automationID string) ([]*models.AutomationExecution, error)
	Save(ctx context.Context, execution *models.AutomationExecution) error
	DeleteByAutomation(ctx context.Context, automationID string) error
}
