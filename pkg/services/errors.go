// Package services provides the automation registry and execution log on top
// of a persistence backend, together with their error taxonomy.
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/autoflow/pkg/catalog"
	"github.com/dukex/autoflow/pkg/models"
	"github.com/dukex/autoflow/pkg/persistence"
	"github.com/dukex/autoflow/pkg/schema"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidConfig  = errors.New("invalid automation configuration")
	ErrNameRequired   = errors.New("automation name is required")
	ErrInvalidStatus  = errors.New("invalid status")
	ErrInvalidAction  = errors.New("invalid action type")
	ErrInvalidOutcome = errors.New("execution outcome must be success or failed")

	// Business Logic Conflicts (409 Conflict).
	ErrAutomationPaused  = errors.New("automation is paused")
	ErrEventTypeMismatch = errors.New("event type does not match automation trigger")
	ErrAlreadyFired      = errors.New("automation already fired for this event")

	// Not Found (404).
	ErrAutomationNotFound = persistence.ErrAutomationNotFound
	ErrExecutionNotFound  = persistence.ErrExecutionNotFound
	ErrTemplateNotFound   = persistence.ErrTemplateNotFound
)

// ValidationError reports every problem found in a template configuration at
// once. MissingFields holds the labels of absent required fields in template
// order.
type ValidationError struct {
	Op                  string
	TemplateSlug        string
	MissingFields       []string
	InvalidFields       []string
	UnknownPlaceholders []string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, 3)

	if len(e.MissingFields) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.MissingFields, ", "))
	}

	if len(e.InvalidFields) > 0 {
		parts = append(parts, "invalid value for fields: "+strings.Join(e.InvalidFields, ", "))
	}

	if len(e.UnknownPlaceholders) > 0 {
		parts = append(parts, "unknown placeholders: "+strings.Join(e.UnknownPlaceholders, ", "))
	}

	return fmt.Sprintf("%s: template %s: %s", e.Op, e.TemplateSlug, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

func (e *ValidationError) empty() bool {
	return len(e.MissingFields) == 0 && len(e.InvalidFields) == 0 && len(e.UnknownPlaceholders) == 0
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidAction) ||
		errors.Is(err, ErrInvalidOutcome) ||
		errors.Is(err, catalog.ErrUnknownEventType) ||
		errors.Is(err, schema.ErrInvalidPayload)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrAutomationPaused) ||
		errors.Is(err, ErrEventTypeMismatch) ||
		errors.Is(err, ErrAlreadyFired) ||
		errors.Is(err, models.ErrInvalidTransition)
}

// IsNotFound checks if an error refers to a missing automation, execution or template.
func IsNotFound(err error) bool {
	return persistence.IsNotFound(err)
}
