package catalog

import (
	"errors"
	"fmt"
)

// Event type identifiers.
const (
	EventOrderCreated       = "order_created"
	EventOrderUpdated       = "order_updated"
	EventOrderStatusChanged = "order_status_changed"
	EventOrderCancelled     = "order_cancelled"

	EventContractCreated   = "contract_created"
	EventContractSigned    = "contract_signed"
	EventContractActive    = "contract_active"
	EventContractCompleted = "contract_completed"

	EventTransactionCompleted = "transaction_completed"
	EventTransactionFailed    = "transaction_failed"
	EventPaymentOverdue       = "payment_overdue"

	EventCustomerCreated = "customer_created"
	EventCustomerUpdated = "customer_updated"

	EventFinancingSubmitted = "financing_submitted"
	EventFinancingApproved  = "financing_approved"
	EventFinancingDeclined  = "financing_declined"
)

// ErrUnknownEventType is returned when an event type is not part of the taxonomy.
var ErrUnknownEventType = errors.New("unknown event type")

// UnknownEventTypeError names the rejected event type.
type UnknownEventTypeError struct {
	EventType string
}

func (e *UnknownEventTypeError) Error() string {
	return fmt.Sprintf("unknown event type %q", e.EventType)
}

func (e *UnknownEventTypeError) Unwrap() error {
	return ErrUnknownEventType
}

// EventDefinition is one platform event in the taxonomy.
type EventDefinition struct {
	Type     string `json:"type"`
	Label    string `json:"label"`
	Category string `json:"category"`
}

// EventCategory groups related events.
type EventCategory struct {
	Name   string            `json:"name"`
	Events []EventDefinition `json:"events"`
}

var eventCategories = []EventCategory{
	{
		Name: "Orders",
		Events: []EventDefinition{
			{Type: EventOrderCreated, Label: "Order Created"},
			{Type: EventOrderUpdated, Label: "Order Updated"},
			{Type: EventOrderStatusChanged, Label: "Order Status Changed"},
			{Type: EventOrderCancelled, Label: "Order Cancelled"},
		},
	},
	{
		Name: "Contracts",
		Events: []EventDefinition{
			{Type: EventContractCreated, Label: "Contract Created"},
			{Type: EventContractSigned, Label: "Contract Signed"},
			{Type: EventContractActive, Label: "Contract Activated"},
			{Type: EventContractCompleted, Label: "Contract Completed"},
		},
	},
	{
		Name: "Payments",
		Events: []EventDefinition{
			{Type: EventTransactionCompleted, Label: "Payment Received"},
			{Type: EventTransactionFailed, Label: "Payment Failed"},
			{Type: EventPaymentOverdue, Label: "Payment Overdue"},
		},
	},
	{
		Name: "Customers",
		Events: []EventDefinition{
			{Type: EventCustomerCreated, Label: "Customer Created"},
			{Type: EventCustomerUpdated, Label: "Customer Updated"},
		},
	},
	{
		Name: "Financing",
		Events: []EventDefinition{
			{Type: EventFinancingSubmitted, Label: "Financing Application Submitted"},
			{Type: EventFinancingApproved, Label: "Financing Approved"},
			{Type: EventFinancingDeclined, Label: "Financing Declined"},
		},
	},
}

var eventIndex = buildEventIndex()

func buildEventIndex() map[string]EventDefinition {
	index := make(map[string]EventDefinition)

	for _, category := range eventCategories {
		for _, event := range category.Events {
			event.Category = category.Name
			index[event.Type] = event
		}
	}

	return index
}

// EventCategories returns a copy of the event taxonomy.
func EventCategories() []EventCategory {
	categories := make([]EventCategory, len(eventCategories))

	for i, category := range eventCategories {
		events := make([]EventDefinition, len(category.Events))
		for j, event := range category.Events {
			event.Category = category.Name
			events[j] = event
		}

		categories[i] = EventCategory{Name: category.Name, Events: events}
	}

	return categories
}

// EventTypes returns every event identifier in taxonomy order.
func EventTypes() []string {
	types := make([]string, 0, len(eventIndex))

	for _, category := range eventCategories {
		for _, event := range category.Events {
			types = append(types, event.Type)
		}
	}

	return types
}

// LookupEvent returns the definition of eventType.
func LookupEvent(eventType string) (EventDefinition, bool) {
	event, ok := eventIndex[eventType]

	return event, ok
}

// ValidateEventType rejects event types outside the taxonomy.
func ValidateEventType(eventType string) error {
	if _, ok := eventIndex[eventType]; !ok {
		return &UnknownEventTypeError{EventType: eventType}
	}

	return nil
}
