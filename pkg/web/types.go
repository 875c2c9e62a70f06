// Package web provides HTTP request and response types for the automation API.
package web

import (
	"github.com/dukex/autoflow/pkg/models"
)

// CreateAutomationRequest instantiates a catalog template.
type CreateAutomationRequest struct {
	TemplateSlug string            `json:"template_slug" validate:"required"`
	Name         string            `json:"name"          validate:"omitempty,max=120"`
	Config       map[string]string `json:"config"`
}

// CreateCustomAutomationRequest creates an automation outside the catalog.
type CreateCustomAutomationRequest struct {
	Name        string `json:"name"        validate:"required,max=120"`
	Description string `json:"description" validate:"max=500"`
}

// RecordExecutionRequest logs a firing of an automation.
type RecordExecutionRequest struct {
	EventType   string             `json:"event_type"   validate:"required"`
	TriggerData models.TriggerData `json:"trigger_data"`
}

// CompleteExecutionRequest finishes a running execution.
type CompleteExecutionRequest struct {
	Status       models.ExecutionStatus `json:"status"        validate:"required,oneof=success failed"`
	ErrorMessage string                 `json:"error_message" validate:"max=1000"`
}

// PublishEventRequest injects a platform event into the trigger pipeline.
type PublishEventRequest struct {
	EventType string             `json:"event_type" validate:"required"`
	Source    string             `json:"source"     validate:"omitempty,max=64"`
	Payload   models.TriggerData `json:"payload"`
}

// PublishEventResponse acknowledges an accepted event.
type PublishEventResponse struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
}

type TemplateListResponse struct {
	Templates  []models.AutomationTemplate `json:"templates"`
	TotalCount int                         `json:"total_count"`
}

type AutomationListResponse struct {
	Automations []*models.Automation `json:"automations"`
	TotalCount  int                  `json:"total_count"`
}

type ExecutionListResponse struct {
	Executions []*models.AutomationExecution `json:"executions"`
	TotalCount int                           `json:"total_count"`
}
