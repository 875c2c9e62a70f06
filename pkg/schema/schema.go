// Package schema declares the versioned trigger payload shape of every event
// type and validates trigger data and config placeholders against it.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dukex/autoflow/pkg/catalog"
	"github.com/dukex/autoflow/pkg/models"
	"github.com/dukex/autoflow/pkg/template"
	"github.com/xeipuuv/gojsonschema"
)

// FieldType is the JSON type of a payload field.
type FieldType string

const (
	FieldTypeString FieldType = "string"
	FieldTypeNumber FieldType = "number"
)

// ErrInvalidPayload is returned when trigger data does not match its schema.
var ErrInvalidPayload = errors.New("invalid trigger payload")

// ErrSchemaNotFound is returned for event types without a declared schema.
var ErrSchemaNotFound = errors.New("payload schema not found")

// PayloadError lists every schema violation of a payload.
type PayloadError struct {
	EventType  string
	Violations []string
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("invalid payload for %s: %s", e.EventType, strings.Join(e.Violations, "; "))
}

func (e *PayloadError) Unwrap() error {
	return ErrInvalidPayload
}

// PayloadField is one declared key of a payload.
type PayloadField struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	Description string    `json:"description,omitempty"`
}

// PayloadSchema is the declared payload of one event type.
type PayloadSchema struct {
	EventType string         `json:"event_type"`
	Version   int            `json:"version"`
	Fields    []PayloadField `json:"fields"`
}

// HasField reports whether name is declared.
func (s PayloadSchema) HasField(name string) bool {
	for _, field := range s.Fields {
		if field.Name == name {
			return true
		}
	}

	return false
}

// JSONSchema renders the payload schema as a JSON Schema document. Undeclared
// keys are allowed so producers can add fields before a schema bump.
func (s PayloadSchema) JSONSchema() map[string]any {
	properties := make(map[string]any, len(s.Fields))
	required := make([]any, 0, len(s.Fields))

	for _, field := range s.Fields {
		properties[field.Name] = map[string]any{
			"type":        string(field.Type),
			"description": field.Description,
		}

		if field.Required {
			required = append(required, field.Name)
		}
	}

	doc := map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"title":      fmt.Sprintf("%s v%d", s.EventType, s.Version),
		"type":       "object",
		"properties": properties,
	}

	if len(required) > 0 {
		doc["required"] = required
	}

	return doc
}

// Registry holds the payload schema of every event type.
type Registry struct {
	schemas map[string]PayloadSchema
	loaders map[string]gojsonschema.JSONLoader
}

// NewRegistry builds a registry from schemas. Every schema must name an event
// type of the taxonomy.
func NewRegistry(schemas []PayloadSchema) (*Registry, error) {
	r := &Registry{
		schemas: make(map[string]PayloadSchema, len(schemas)),
		loaders: make(map[string]gojsonschema.JSONLoader, len(schemas)),
	}

	for _, s := range schemas {
		if err := catalog.ValidateEventType(s.EventType); err != nil {
			return nil, err
		}

		if _, dup := r.schemas[s.EventType]; dup {
			return nil, fmt.Errorf("duplicate payload schema for %s", s.EventType)
		}

		r.schemas[s.EventType] = s
		r.loaders[s.EventType] = gojsonschema.NewGoLoader(s.JSONSchema())
	}

	return r, nil
}

// Default returns the registry of built-in payload schemas.
func Default() *Registry {
	r, err := NewRegistry(builtinSchemas)
	if err != nil {
		panic(fmt.Errorf("invalid built-in payload schemas: %w", err))
	}

	return r
}

// Schema returns the payload schema of eventType.
func (r *Registry) Schema(eventType string) (PayloadSchema, error) {
	if err := catalog.ValidateEventType(eventType); err != nil {
		return PayloadSchema{}, err
	}

	s, ok := r.schemas[eventType]
	if !ok {
		return PayloadSchema{}, fmt.Errorf("%w: %s", ErrSchemaNotFound, eventType)
	}

	return s, nil
}

// ValidatePayload checks data against the schema of eventType.
func (r *Registry) ValidatePayload(eventType string, data models.TriggerData) error {
	if _, err := r.Schema(eventType); err != nil {
		return err
	}

	if data == nil {
		data = models.TriggerData{}
	}

	result, err := gojsonschema.Validate(r.loaders[eventType], gojsonschema.NewGoLoader(map[string]any(data)))
	if err != nil {
		return fmt.Errorf("failed to validate payload for %s: %w", eventType, err)
	}

	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}

	sort.Strings(violations)

	return &PayloadError{EventType: eventType, Violations: violations}
}

// UnknownPlaceholders returns the placeholders of text that the payload of
// eventType does not declare.
func (r *Registry) UnknownPlaceholders(eventType, text string) ([]string, error) {
	s, err := r.Schema(eventType)
	if err != nil {
		return nil, err
	}

	names, err := template.Placeholders(text)
	if err != nil {
		return nil, err
	}

	unknown := make([]string, 0)

	for _, name := range names {
		if !s.HasField(name) {
			unknown = append(unknown, name)
		}
	}

	return unknown, nil
}

// Fill returns a copy of data in which every declared field the producer
// left out is set to the empty string, so optional fields render as blank
// text instead of failing.
func (r *Registry) Fill(eventType string, data models.TriggerData) models.TriggerData {
	filled := data.Clone()
	if filled == nil {
		filled = models.TriggerData{}
	}

	s, ok := r.schemas[eventType]
	if !ok {
		return filled
	}

	for _, field := range s.Fields {
		if _, present := filled[field.Name]; !present {
			filled[field.Name] = ""
		}
	}

	return filled
}
