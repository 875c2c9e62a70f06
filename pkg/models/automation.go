// Package models defines the core domain models for the automation rule engine.
package models

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// AutomationStatus represents the lifecycle state of an automation.
type AutomationStatus string

const (
	AutomationStatusActive AutomationStatus = "active" // Fires on matching trigger events
	AutomationStatusPaused AutomationStatus = "paused" // Ignored by the trigger pipeline
)

// IsValid reports whether s is a known automation status.
func (s AutomationStatus) IsValid() bool {
	switch s {
	case AutomationStatusActive, AutomationStatusPaused:
		return true
	default:
		return false
	}
}

// Toggled returns the opposite status.
func (s AutomationStatus) Toggled() AutomationStatus {
	if s == AutomationStatusActive {
		return AutomationStatusPaused
	}

	return AutomationStatusActive
}

// ActionType is the kind of side effect an automation performs.
type ActionType string

const (
	ActionTypeSlack     ActionType = "slack"
	ActionTypeEmail     ActionType = "email"
	ActionTypeWebhook   ActionType = "webhook"
	ActionTypeCRMUpdate ActionType = "crm_update"
)

var actionLabels = map[ActionType]string{
	ActionTypeSlack:     "Slack",
	ActionTypeEmail:     "Email",
	ActionTypeWebhook:   "Webhook",
	ActionTypeCRMUpdate: "CRM Update",
}

// ActionTypes returns every action type in display order.
func ActionTypes() []ActionType {
	return []ActionType{ActionTypeSlack, ActionTypeEmail, ActionTypeWebhook, ActionTypeCRMUpdate}
}

func (a ActionType) IsValid() bool {
	_, ok := actionLabels[a]

	return ok
}

// Label returns the human readable name of the action type.
func (a ActionType) Label() string {
	if label, ok := actionLabels[a]; ok {
		return label
	}

	return string(a)
}

// Automation is a configured, user-activated rule instance.
type Automation struct {
	ID             string            `json:"id"                      yaml:"id"`
	PID            string            `json:"pid"                     yaml:"pid"`
	Name           string            `json:"name"                    yaml:"name"            validate:"required"`
	Description    string            `json:"description"             yaml:"description"`
	EventType      string            `json:"event_type"              yaml:"event_type"`
	EventLabel     string            `json:"event_label"             yaml:"event_label"`
	ActionType     ActionType        `json:"action_type"             yaml:"action_type"`
	ActionLabel    string            `json:"action_label"            yaml:"action_label"`
	Config         map[string]string `json:"config"                  yaml:"config"`
	Status         AutomationStatus  `json:"status"                  yaml:"status"          validate:"required,oneof=active paused"`
	ExecutionCount int64             `json:"execution_count"         yaml:"execution_count" validate:"min=0"`
	SuccessCount   int64             `json:"success_count"           yaml:"success_count"   validate:"min=0"`
	FailureCount   int64             `json:"failure_count"           yaml:"failure_count"   validate:"min=0"`
	SuccessRate    float64           `json:"success_rate"            yaml:"success_rate"    validate:"min=0,max=100"`
	LastExecutedAt *time.Time        `json:"last_executed_at"        yaml:"last_executed_at"`
	CreatedAt      time.Time         `json:"created_at"              yaml:"created_at"`
	TemplateSlug   *string           `json:"template_slug"           yaml:"template_slug"`
}

// IsActive reports whether the automation fires on matching events.
func (a *Automation) IsActive() bool {
	return a.Status == AutomationStatusActive
}

// IsCustom reports whether the automation was built outside the template catalog.
func (a *Automation) IsCustom() bool {
	return a.TemplateSlug == nil
}

// RecordOutcome updates the terminal tallies and the derived success rate.
func (a *Automation) RecordOutcome(status ExecutionStatus) {
	switch status {
	case ExecutionStatusSuccess:
		a.SuccessCount++
	case ExecutionStatusFailed:
		a.FailureCount++
	default:
		return
	}

	a.SuccessRate = SuccessRate(a.SuccessCount, a.FailureCount)
}

// Clone returns a deep copy of the automation.
func (a *Automation) Clone() *Automation {
	if a == nil {
		return nil
	}

	clone := *a

	if a.Config != nil {
		clone.Config = make(map[string]string, len(a.Config))
		for k, v := range a.Config {
			clone.Config[k] = v
		}
	}

	if a.LastExecutedAt != nil {
		t := *a.LastExecutedAt
		clone.LastExecutedAt = &t
	}

	if a.TemplateSlug != nil {
		slug := *a.TemplateSlug
		clone.TemplateSlug = &slug
	}

	return &clone
}

// TemplateLookup reports whether a template slug exists.
type TemplateLookup func(slug string) bool

// Validate checks the automation invariants. lookup may be nil to skip the
// template reference check.
func (a *Automation) Validate(lookup TemplateLookup) error {
	var errs []error

	if err := structValidator.Struct(a); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}

		for _, fe := range fieldErrs {
			errs = append(errs, fieldError(fe))
		}
	}

	if a.ActionType != "" && !a.ActionType.IsValid() {
		errs = append(errs, fmt.Errorf("invalid action type %q", a.ActionType))
	}

	if a.TemplateSlug != nil && lookup != nil && !lookup(*a.TemplateSlug) {
		errs = append(errs, fmt.Errorf("template %q does not exist", *a.TemplateSlug))
	}

	return errors.Join(errs...)
}

// structValidator checks the validate tags, reporting fields by JSON name.
var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")

		return name
	})

	return v
}

func fieldError(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	case "oneof":
		return fmt.Errorf("invalid %s %q", fe.Field(), fe.Value())
	case "min":
		return fmt.Errorf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Errorf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Errorf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// SuccessRate returns success/(success+failed) as a percentage rounded to one
// decimal. It is 100 when nothing has finished yet.
func SuccessRate(success, failed int64) float64 {
	total := success + failed
	if total == 0 {
		return 100
	}

	rate := float64(success) / float64(total) * 100

	return math.Round(rate*10) / 10
}
