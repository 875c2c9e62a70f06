// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/dukex/autoflow/pkg/models"
	"github.com/google/uuid"
)

// BaseTime is the default creation time of built records.
var BaseTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// CreateTestAutomation creates a test Automation with default values that can be overridden.
func CreateTestAutomation(id string, overrides ...func(*models.Automation)) *models.Automation {
	automation := &models.Automation{
		ID:          id,
		PID:         uuid.New().String(),
		Name:        "Test Automation " + id,
		Config:      map[string]string{"channel": "#orders"},
		Status:      models.AutomationStatusActive,
		SuccessRate: 100,
		CreatedAt:   BaseTime,
	}

	for _, override := range overrides {
		override(automation)
	}

	return automation
}

// WithName sets the automation name.
func WithName(name string) func(*models.Automation) {
	return func(a *models.Automation) {
		a.Name = name
	}
}

// WithStatus sets the automation status.
func WithStatus(status models.AutomationStatus) func(*models.Automation) {
	return func(a *models.Automation) {
		a.Status = status
	}
}

// WithTrigger links the automation to a template, event and action.
func WithTrigger(slug, eventType string, actionType models.ActionType) func(*models.Automation) {
	return func(a *models.Automation) {
		a.TemplateSlug = &slug
		a.EventType = eventType
		a.ActionType = actionType
		a.ActionLabel = actionType.Label()
	}
}

// CreateTestExecution creates a pending test execution of automationID.
func CreateTestExecution(id, automationID string, overrides ...func(*models.AutomationExecution)) *models.AutomationExecution {
	execution := &models.AutomationExecution{
		ID:           id,
		AutomationID: automationID,
		Status:       models.ExecutionStatusPending,
		StartedAt:    BaseTime,
		TriggerData:  models.TriggerData{},
	}

	for _, override := range overrides {
		override(execution)
	}

	return execution
}

// StartedAt sets the execution start time.
func StartedAt(at time.Time) func(*models.AutomationExecution) {
	return func(e *models.AutomationExecution) {
		e.StartedAt = at
	}
}

// Finished moves the execution to a terminal status after took.
func Finished(status models.ExecutionStatus, took time.Duration) func(*models.AutomationExecution) {
	return func(e *models.AutomationExecution) {
		completedAt := e.StartedAt.Add(took)
		durationMs := took.Milliseconds()

		e.Status = status
		e.CompletedAt = &completedAt
		e.DurationMs = &durationMs

		if status == models.ExecutionStatusFailed {
			message := "execution failed"
			e.ErrorMessage = &message
		}
	}
}
