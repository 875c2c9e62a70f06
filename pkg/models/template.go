package models

import (
	"errors"
	"fmt"
)

// TemplateCategory groups templates in the catalog.
type TemplateCategory string

const (
	TemplateCategoryNotifications TemplateCategory = "notifications"
	TemplateCategoryCRM           TemplateCategory = "crm"
	TemplateCategoryOperations    TemplateCategory = "operations"
)

func (c TemplateCategory) IsValid() bool {
	switch c {
	case TemplateCategoryNotifications, TemplateCategoryCRM, TemplateCategoryOperations:
		return true
	default:
		return false
	}
}

// FieldKind is the input kind of a configuration field.
type FieldKind string

const (
	FieldKindText     FieldKind = "text"
	FieldKindEmail    FieldKind = "email"
	FieldKindURL      FieldKind = "url"
	FieldKindTextarea FieldKind = "textarea"
	FieldKindSelect   FieldKind = "select"
)

func (k FieldKind) IsValid() bool {
	switch k {
	case FieldKindText, FieldKindEmail, FieldKindURL, FieldKindTextarea, FieldKindSelect:
		return true
	default:
		return false
	}
}

// SelectOption is one choice of a select field.
type SelectOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ConfigField describes one piece of configuration an action needs.
type ConfigField struct {
	Key         string         `json:"key"`
	Label       string         `json:"label"`
	Kind        FieldKind      `json:"type"`
	Placeholder string         `json:"placeholder,omitempty"`
	Required    bool           `json:"required"`
	Options     []SelectOption `json:"options,omitempty"`
}

// Validate checks the field descriptor.
func (f ConfigField) Validate() error {
	if f.Key == "" {
		return errors.New("config field key is required")
	}

	if !f.Kind.IsValid() {
		return fmt.Errorf("config field %q has invalid kind %q", f.Key, f.Kind)
	}

	if f.Kind == FieldKindSelect && len(f.Options) == 0 {
		return fmt.Errorf("select field %q must declare options", f.Key)
	}

	return nil
}

// HasOption reports whether value is one of the select options.
func (f ConfigField) HasOption(value string) bool {
	for _, opt := range f.Options {
		if opt.Value == value {
			return true
		}
	}

	return false
}

// AutomationTemplate is an immutable catalog blueprint pairing one trigger
// event with one action and its configuration schema.
type AutomationTemplate struct {
	Slug         string           `json:"slug"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Category     TemplateCategory `json:"category"`
	Icon         string           `json:"icon"`
	EventType    string           `json:"event_type"`
	EventLabel   string           `json:"event_label"`
	ActionType   ActionType       `json:"action_type"`
	ConfigFields []ConfigField    `json:"config_fields"`
	IsPopular    bool             `json:"is_popular"`
}

// Clone copies the template including its field slices.
func (t AutomationTemplate) Clone() AutomationTemplate {
	clone := t
	clone.ConfigFields = make([]ConfigField, len(t.ConfigFields))

	for i, field := range t.ConfigFields {
		clone.ConfigFields[i] = field
		if field.Options != nil {
			clone.ConfigFields[i].Options = append([]SelectOption(nil), field.Options...)
		}
	}

	return clone
}

// Validate checks the template invariants.
func (t AutomationTemplate) Validate() error {
	if t.Slug == "" {
		return errors.New("template slug is required")
	}

	if !t.Category.IsValid() {
		return fmt.Errorf("template %s: invalid category %q", t.Slug, t.Category)
	}

	if !t.ActionType.IsValid() {
		return fmt.Errorf("template %s: invalid action type %q", t.Slug, t.ActionType)
	}

	seen := make(map[string]struct{}, len(t.ConfigFields))

	for _, field := range t.ConfigFields {
		if err := field.Validate(); err != nil {
			return fmt.Errorf("template %s: %w", t.Slug, err)
		}

		if _, dup := seen[field.Key]; dup {
			return fmt.Errorf("template %s: duplicate config field %q", t.Slug, field.Key)
		}

		seen[field.Key] = struct{}{}
	}

	return nil
}
