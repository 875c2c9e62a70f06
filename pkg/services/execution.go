package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/dukex/autoflow/pkg/catalog"
	"github.com/dukex/autoflow/pkg/events"
	"github.com/dukex/autoflow/pkg/models"
	"github.com/dukex/autoflow/pkg/persistence"
	"github.com/dukex/autoflow/pkg/schema"
	"github.com/dukex/autoflow/pkg/stats"
)

// Execution is the log of automation firings.
type Execution struct {
	persistence persistence.Persistence
	schemas     *schema.Registry
	*settings
}

func NewExecution(p persistence.Persistence, schemas *schema.Registry, opts ...Option) *Execution {
	return newExecution(p, schemas, newSettings(opts))
}

func newExecution(p persistence.Persistence, schemas *schema.Registry, s *settings) *Execution {
	return &Execution{
		persistence: p,
		schemas:     schemas,
		settings:    s,
	}
}

// Record logs a firing of automationID that is already running.
func (e *Execution) Record(ctx context.Context, automationID, eventType string, data models.TriggerData) (*models.AutomationExecution, error) {
	return e.begin(ctx, "Record", "", automationID, eventType, data, models.ExecutionStatusRunning)
}

// Enqueue logs a firing caused by trigger event eventID that has not started
// yet. An automation fires at most once per event ID; a second attempt fails
// with ErrAlreadyFired.
func (e *Execution) Enqueue(
	ctx context.Context,
	eventID, automationID, eventType string,
	data models.TriggerData,
) (*models.AutomationExecution, error) {
	return e.begin(ctx, "Enqueue", eventID, automationID, eventType, data, models.ExecutionStatusPending)
}

func (e *Execution) begin(
	ctx context.Context,
	op, eventID, automationID, eventType string,
	data models.TriggerData,
	status models.ExecutionStatus,
) (*models.AutomationExecution, error) {
	if err := catalog.ValidateEventType(eventType); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	automation, err := e.persistence.AutomationRepository().GetByID(ctx, automationID)
	if err != nil {
		return nil, persistence.NewAutomationError(op, automationID, err)
	}

	if automation == nil {
		return nil, persistence.NewAutomationError(op, automationID, ErrAutomationNotFound)
	}

	// Custom automations carry no trigger and accept any event.
	if automation.EventType != "" && automation.EventType != eventType {
		return nil, fmt.Errorf("%w: automation %s listens to %s, got %s",
			ErrEventTypeMismatch, automationID, automation.EventType, eventType)
	}

	if !automation.IsActive() {
		return nil, fmt.Errorf("%w: %s", ErrAutomationPaused, automationID)
	}

	if err := e.schemas.ValidatePayload(eventType, data); err != nil {
		return nil, err
	}

	if eventID != "" {
		history, err := e.persistence.ExecutionRepository().GetByAutomation(ctx, automationID)
		if err != nil {
			return nil, fmt.Errorf("failed to load execution history: %w", err)
		}

		for _, previous := range history {
			if previous.EventID == eventID {
				return nil, fmt.Errorf("%w: automation %s, event %s (execution %s)",
					ErrAlreadyFired, automationID, eventID, previous.ID)
			}
		}
	}

	now := e.clock()
	execution := &models.AutomationExecution{
		ID:           e.newID("exe"),
		AutomationID: automationID,
		EventType:    eventType,
		EventID:      eventID,
		Status:       status,
		StartedAt:    now,
		TriggerData:  data.Clone(),
	}

	err = e.persistence.ExecutionRepository().Save(ctx, execution)
	if err != nil {
		return nil, fmt.Errorf("failed to save execution: %w", err)
	}

	automation.ExecutionCount++
	automation.LastExecutedAt = &now

	err = e.persistence.AutomationRepository().Save(ctx, automation)
	if err != nil {
		return nil, fmt.Errorf("failed to update automation %s: %w", automationID, err)
	}

	e.logger.DebugContext(ctx, "Execution started",
		"execution_id", execution.ID, "automation_id", automationID, "status", status)

	return execution, nil
}

// Start moves a pending execution to running.
func (e *Execution) Start(ctx context.Context, executionID string) (*models.AutomationExecution, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	execution, err := e.fetch(ctx, "Start", executionID)
	if err != nil {
		return nil, err
	}

	if err := execution.Start(e.clock()); err != nil {
		return nil, persistence.NewExecutionError("Start", executionID, err)
	}

	err = e.persistence.ExecutionRepository().Save(ctx, execution)
	if err != nil {
		return nil, fmt.Errorf("failed to save execution: %w", err)
	}

	return execution, nil
}

// Complete moves a running execution to its terminal outcome and updates the
// owning automation's success rate. errorMessage is kept only for failures.
func (e *Execution) Complete(
	ctx context.Context,
	executionID string,
	outcome models.ExecutionStatus,
	errorMessage string,
) (*models.AutomationExecution, error) {
	if !outcome.IsTerminal() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOutcome, outcome)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	execution, err := e.fetch(ctx, "Complete", executionID)
	if err != nil {
		return nil, err
	}

	if err := execution.Finish(outcome, errorMessage, e.clock()); err != nil {
		return nil, persistence.NewExecutionError("Complete", executionID, err)
	}

	err = e.persistence.ExecutionRepository().Save(ctx, execution)
	if err != nil {
		return nil, fmt.Errorf("failed to save execution: %w", err)
	}

	automation, err := e.persistence.AutomationRepository().GetByID(ctx, execution.AutomationID)
	if err != nil {
		return nil, persistence.NewAutomationError("Complete", execution.AutomationID, err)
	}

	if automation != nil {
		automation.RecordOutcome(outcome)

		err = e.persistence.AutomationRepository().Save(ctx, automation)
		if err != nil {
			return nil, fmt.Errorf("failed to update automation %s: %w", automation.ID, err)
		}
	}

	e.logger.InfoContext(ctx, "Execution completed",
		"execution_id", executionID, "automation_id", execution.AutomationID,
		"status", outcome, "duration_ms", *execution.DurationMs)
	e.publish(ctx, execution.AutomationID, events.NewExecutionCompleted(execution))

	return execution, nil
}

// ListForAutomation returns the history of one automation, most recent first.
func (e *Execution) ListForAutomation(ctx context.Context, automationID string) ([]*models.AutomationExecution, error) {
	automation, err := e.persistence.AutomationRepository().GetByID(ctx, automationID)
	if err != nil {
		return nil, persistence.NewAutomationError("ListForAutomation", automationID, err)
	}

	if automation == nil {
		return nil, persistence.NewAutomationError("ListForAutomation", automationID, ErrAutomationNotFound)
	}

	executions, err := e.persistence.ExecutionRepository().GetByAutomation(ctx, automationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}

	sortMostRecentFirst(executions)

	return executions, nil
}

// ExecutionFilter narrows List. Zero values match everything.
type ExecutionFilter struct {
	AutomationID string
	Status       models.ExecutionStatus
}

// List returns executions across all automations, most recent first.
func (e *Execution) List(ctx context.Context, filter ExecutionFilter) ([]*models.AutomationExecution, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, filter.Status)
	}

	var (
		executions []*models.AutomationExecution
		err        error
	)

	if filter.AutomationID != "" {
		executions, err = e.persistence.ExecutionRepository().GetByAutomation(ctx, filter.AutomationID)
	} else {
		executions, err = e.persistence.ExecutionRepository().GetAll(ctx)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}

	if filter.Status != "" {
		executions = slices.DeleteFunc(executions, func(execution *models.AutomationExecution) bool {
			return execution.Status != filter.Status
		})
	}

	sortMostRecentFirst(executions)

	return executions, nil
}

// FetchByID retrieves an execution by its ID.
func (e *Execution) FetchByID(ctx context.Context, id string) (*models.AutomationExecution, error) {
	return e.fetch(ctx, "FetchByID", id)
}

// Stats computes the dashboard statistics at the current time.
func (e *Execution) Stats(ctx context.Context) (models.AutomationStats, error) {
	automations, err := e.persistence.AutomationRepository().GetAll(ctx)
	if err != nil {
		return models.AutomationStats{}, fmt.Errorf("failed to list automations: %w", err)
	}

	executions, err := e.persistence.ExecutionRepository().GetAll(ctx)
	if err != nil {
		return models.AutomationStats{}, fmt.Errorf("failed to list executions: %w", err)
	}

	return stats.Compute(automations, executions, e.clock()), nil
}

func (e *Execution) fetch(ctx context.Context, op, id string) (*models.AutomationExecution, error) {
	execution, err := e.persistence.ExecutionRepository().GetByID(ctx, id)
	if err != nil {
		return nil, persistence.NewExecutionError(op, id, err)
	}

	if execution == nil {
		return nil, persistence.NewExecutionError(op, id, ErrExecutionNotFound)
	}

	return execution, nil
}

func sortMostRecentFirst(executions []*models.AutomationExecution) {
	slices.SortStableFunc(executions, func(a, b *models.AutomationExecution) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
}
