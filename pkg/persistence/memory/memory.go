// Package memory provides the in-process persistence used for a single
// session. Initial state is injected at construction.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/dukex/autoflow/pkg/models"
	"github.com/dukex/autoflow/pkg/persistence"
)

// Option configures the initial state of the store.
type Option func(*Persistence)

// WithAutomations seeds the store with automations in the given order.
func WithAutomations(automations ...*models.Automation) Option {
	return func(p *Persistence) {
		for _, a := range automations {
			p.automations.put(a.Clone())
		}
	}
}

// WithExecutions seeds the store with execution records.
func WithExecutions(executions ...*models.AutomationExecution) Option {
	return func(p *Persistence) {
		for _, e := range executions {
			p.executions.put(e.Clone())
		}
	}
}

// Persistence implements persistence.Persistence in memory.
type Persistence struct {
	automations *AutomationRepository
	executions  *ExecutionRepository
}

// NewPersistence creates an empty store and applies opts.
func NewPersistence(opts ...Option) *Persistence {
	p := &Persistence{
		automations: &AutomationRepository{index: make(map[string]*models.Automation)},
		executions:  &ExecutionRepository{index: make(map[string]*models.AutomationExecution)},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *Persistence) AutomationRepository() persistence.AutomationRepository {
	return p.automations
}

func (p *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return p.executions
}

// HealthCheck always succeeds for the in-memory store.
func (p *Persistence) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

// AutomationRepository keeps automations in insertion order.
type AutomationRepository struct {
	mu    sync.RWMutex
	order []string
	index map[string]*models.Automation
}

func (r *AutomationRepository) put(a *models.Automation) {
	if _, exists := r.index[a.ID]; !exists {
		r.order = append(r.order, a.ID)
	}

	r.index[a.ID] = a
}

func (r *AutomationRepository) GetAll(_ context.Context) ([]*models.Automation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Automation, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.index[id].Clone())
	}

	return result, nil
}

func (r *AutomationRepository) GetByID(_ context.Context, id string) (*models.Automation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.index[id]
	if !ok {
		return nil, nil
	}

	return a.Clone(), nil
}

func (r *AutomationRepository) Save(_ context.Context, automation *models.Automation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.put(automation.Clone())

	return nil
}

func (r *AutomationRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[id]; !ok {
		return persistence.NewAutomationError("Delete", id, persistence.ErrAutomationNotFound)
	}

	delete(r.index, id)
	r.order = slices.DeleteFunc(r.order, func(existing string) bool { return existing == id })

	return nil
}

// ExecutionRepository keeps execution records in insertion order.
type ExecutionRepository struct {
	mu    sync.RWMutex
	order []string
	index map[string]*models.AutomationExecution
}

func (r *ExecutionRepository) put(e *models.AutomationExecution) {
	if _, exists := r.index[e.ID]; !exists {
		r.order = append(r.order, e.ID)
	}

	r.index[e.ID] = e
}

func (r *ExecutionRepository) GetAll(_ context.Context) ([]*models.AutomationExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.AutomationExecution, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.index[id].Clone())
	}

	return result, nil
}

func (r *ExecutionRepository) GetByID(_ context.Context, id string) (*models.AutomationExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.index[id]
	if !ok {
		return nil, nil
	}

	return e.Clone(), nil
}

func (r *ExecutionRepository) GetByAutomation(_ context.Context, automationID string) ([]*models.AutomationExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.AutomationExecution, 0)

	for _, id := range r.order {
		if e := r.index[id]; e.AutomationID == automationID {
			result = append(result, e.Clone())
		}
	}

	return result, nil
}

func (r *ExecutionRepository) Save(_ context.Context, execution *models.AutomationExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.put(execution.Clone())

	return nil
}

func (r *ExecutionRepository) DeleteByAutomation(_ context.Context, automationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.order[:0]

	for _, id := range r.order {
		if r.index[id].AutomationID == automationID {
			delete(r.index, id)

			continue
		}

		kept = append(kept, id)
	}

	r.order = kept

	return nil
}
