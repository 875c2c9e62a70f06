// Package events defines the messages exchanged on the event bus: incoming
// business triggers and automation lifecycle notifications.
package events

import (
	"time"

	"github.com/dukex/autoflow/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic carries every autoflow message.
const Topic = "autoflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// TriggerReceivedEvent carries a business event from the lending platform.
	TriggerReceivedEvent EventType = "trigger.received"

	// Automation lifecycle events.
	AutomationCreatedEvent EventType = "automation.created"
	AutomationToggledEvent EventType = "automation.toggled"
	AutomationDeletedEvent EventType = "automation.deleted"

	ExecutionCompletedEvent EventType = "execution.completed"
)

type BaseEvent struct {
	ID           string         `json:"id"`
	Type         EventType      `json:"type"`
	Timestamp    time.Time      `json:"timestamp"`
	AutomationID string         `json:"automation_id,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

func NewBaseEvent(eventType EventType, automationID string) BaseEvent {
	return BaseEvent{
		ID:           uuid.New().String(),
		Type:         eventType,
		Timestamp:    time.Now().UTC(),
		AutomationID: automationID,
		Metadata:     make(map[string]any),
	}
}

// TriggerReceived is a business event such as order_created, with its payload.
type TriggerReceived struct {
	BaseEvent

	EventType string             `json:"event_type"`
	Source    string             `json:"source,omitempty"`
	Payload   models.TriggerData `json:"payload"`
}

func (t TriggerReceived) GetType() EventType {
	return TriggerReceivedEvent
}

// NewTriggerReceived creates a trigger event for a business event type.
func NewTriggerReceived(eventType, source string, payload models.TriggerData) *TriggerReceived {
	return &TriggerReceived{
		BaseEvent: NewBaseEvent(TriggerReceivedEvent, ""),
		EventType: eventType,
		Source:    source,
		Payload:   payload,
	}
}

type AutomationCreated struct {
	BaseEvent

	Name         string            `json:"name"`
	EventType    string            `json:"event_type,omitempty"`
	ActionType   models.ActionType `json:"action_type,omitempty"`
	TemplateSlug string            `json:"template_slug,omitempty"`
}

func (a AutomationCreated) GetType() EventType {
	return AutomationCreatedEvent
}

func NewAutomationCreated(automation *models.Automation) *AutomationCreated {
	event := &AutomationCreated{
		BaseEvent:  NewBaseEvent(AutomationCreatedEvent, automation.ID),
		Name:       automation.Name,
		EventType:  automation.EventType,
		ActionType: automation.ActionType,
	}

	if automation.TemplateSlug != nil {
		event.TemplateSlug = *automation.TemplateSlug
	}

	return event
}

type AutomationToggled struct {
	BaseEvent

	Status models.AutomationStatus `json:"status"`
}

func (a AutomationToggled) GetType() EventType {
	return AutomationToggledEvent
}

func NewAutomationToggled(automationID string, status models.AutomationStatus) *AutomationToggled {
	return &AutomationToggled{
		BaseEvent: NewBaseEvent(AutomationToggledEvent, automationID),
		Status:    status,
	}
}

type AutomationDeleted struct {
	BaseEvent

	ExecutionsRemoved int `json:"executions_removed"`
}

func (a AutomationDeleted) GetType() EventType {
	return AutomationDeletedEvent
}

func NewAutomationDeleted(automationID string, executionsRemoved int) *AutomationDeleted {
	return &AutomationDeleted{
		BaseEvent:         NewBaseEvent(AutomationDeletedEvent, automationID),
		ExecutionsRemoved: executionsRemoved,
	}
}

// ExecutionCompleted is published once an execution reaches a terminal state.
type ExecutionCompleted struct {
	BaseEvent

	ExecutionID  string                 `json:"execution_id"`
	EventType    string                 `json:"event_type"`
	Status       models.ExecutionStatus `json:"status"`
	DurationMs   int64                  `json:"duration_ms"`
	ErrorMessage string                 `json:"error_message,omitempty"`
}

func (e ExecutionCompleted) GetType() EventType {
	return ExecutionCompletedEvent
}

func NewExecutionCompleted(execution *models.AutomationExecution) *ExecutionCompleted {
	event := &ExecutionCompleted{
		BaseEvent:   NewBaseEvent(ExecutionCompletedEvent, execution.AutomationID),
		ExecutionID: execution.ID,
		EventType:   execution.EventType,
		Status:      execution.Status,
	}

	if execution.DurationMs != nil {
		event.DurationMs = *execution.DurationMs
	}

	if execution.ErrorMessage != nil {
		event.ErrorMessage = *execution.ErrorMessage
	}

	return event
}
