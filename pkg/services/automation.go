package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dukex/autoflow/pkg/catalog"
	"github.com/dukex/autoflow/pkg/events"
	"github.com/dukex/autoflow/pkg/models"
	"github.com/dukex/autoflow/pkg/persistence"
	"github.com/dukex/autoflow/pkg/schema"
	"github.com/dukex/autoflow/pkg/template"
	"github.com/google/uuid"
)

// Automation is the registry of configured automations.
type Automation struct {
	persistence persistence.Persistence
	catalog     *catalog.Catalog
	schemas     *schema.Registry
	*settings
}

// NewAutomation creates a new automation registry service.
func NewAutomation(p persistence.Persistence, cat *catalog.Catalog, schemas *schema.Registry, opts ...Option) *Automation {
	return newAutomation(p, cat, schemas, newSettings(opts))
}

func newAutomation(p persistence.Persistence, cat *catalog.Catalog, schemas *schema.Registry, s *settings) *Automation {
	return &Automation{
		persistence: p,
		catalog:     cat,
		schemas:     schemas,
		settings:    s,
	}
}

// HealthCheck checks the health of the persistence layer.
func (a *Automation) HealthCheck(ctx context.Context) (string, bool) {
	if a.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := a.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// Create instantiates the catalog template slug.
func (a *Automation) Create(ctx context.Context, slug, name string, config map[string]string) (*models.Automation, error) {
	tmpl, ok := a.catalog.GetTemplate(slug)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, slug)
	}

	return a.CreateFromTemplate(ctx, tmpl, name, config)
}

// CreateFromTemplate validates config against tmpl, which must belong to the
// catalog, and stores a new active automation. A blank name falls back to the
// template name. Keys the template does not declare are dropped.
func (a *Automation) CreateFromTemplate(ctx context.Context, tmpl models.AutomationTemplate, name string, config map[string]string) (*models.Automation, error) {
	if err := tmpl.Validate(); err != nil {
		return nil, fmt.Errorf("invalid template %s: %w", tmpl.Slug, err)
	}

	if err := a.validateConfig(tmpl, config); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = tmpl.Name
	}

	stored := make(map[string]string, len(tmpl.ConfigFields))

	for _, field := range tmpl.ConfigFields {
		if value := strings.TrimSpace(config[field.Key]); value != "" {
			stored[field.Key] = value
		}
	}

	slug := tmpl.Slug
	automation := &models.Automation{
		ID:           a.newID("aut"),
		PID:          uuid.NewString(),
		Name:         name,
		Description:  tmpl.Description,
		EventType:    tmpl.EventType,
		EventLabel:   tmpl.EventLabel,
		ActionType:   tmpl.ActionType,
		ActionLabel:  tmpl.ActionType.Label(),
		Config:       stored,
		Status:       models.AutomationStatusActive,
		SuccessRate:  100,
		CreatedAt:    a.clock(),
		TemplateSlug: &slug,
	}

	return a.store(ctx, automation)
}

func (a *Automation) validateConfig(tmpl models.AutomationTemplate, config map[string]string) error {
	verr := &ValidationError{Op: "Create", TemplateSlug: tmpl.Slug}
	seen := make(map[string]bool)

	for _, field := range tmpl.ConfigFields {
		value := strings.TrimSpace(config[field.Key])

		if value == "" {
			if field.Required {
				verr.MissingFields = append(verr.MissingFields, field.Label)
			}

			continue
		}

		if field.Kind == models.FieldKindSelect && !field.HasOption(value) {
			verr.InvalidFields = append(verr.InvalidFields, field.Label)
		}

		unknown, err := a.schemas.UnknownPlaceholders(tmpl.EventType, value)
		if errors.Is(err, template.ErrInvalidTemplate) {
			verr.InvalidFields = append(verr.InvalidFields, field.Label)

			continue
		}

		if err != nil {
			return fmt.Errorf("failed to check placeholders of %s: %w", field.Key, err)
		}

		for _, placeholder := range unknown {
			if !seen[placeholder] {
				seen[placeholder] = true
				verr.UnknownPlaceholders = append(verr.UnknownPlaceholders, placeholder)
			}
		}
	}

	if verr.empty() {
		return nil
	}

	return verr
}

// CreateCustom stores an automation that is not linked to any template.
func (a *Automation) CreateCustom(ctx context.Context, name, description string) (*models.Automation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	automation := &models.Automation{
		ID:          a.newID("aut"),
		PID:         uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Config:      map[string]string{},
		Status:      models.AutomationStatusActive,
		SuccessRate: 100,
		CreatedAt:   a.clock(),
	}

	return a.store(ctx, automation)
}

func (a *Automation) store(ctx context.Context, automation *models.Automation) (*models.Automation, error) {
	if err := automation.Validate(a.catalog.Has); err != nil {
		return nil, fmt.Errorf("invalid automation: %w", err)
	}

	a.mu.Lock()
	err := a.persistence.AutomationRepository().Save(ctx, automation)
	a.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("failed to save automation: %w", err)
	}

	a.logger.InfoContext(ctx, "Automation created",
		"automation_id", automation.ID, "custom", automation.IsCustom(), "event_type", automation.EventType)
	a.publish(ctx, automation.ID, events.NewAutomationCreated(automation))

	return automation, nil
}

// Toggle flips an automation between active and paused.
func (a *Automation) Toggle(ctx context.Context, id string) (*models.Automation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	automation, err := a.fetch(ctx, "Toggle", id)
	if err != nil {
		return nil, err
	}

	automation.Status = automation.Status.Toggled()

	err = a.persistence.AutomationRepository().Save(ctx, automation)
	if err != nil {
		return nil, fmt.Errorf("failed to save automation: %w", err)
	}

	a.logger.InfoContext(ctx, "Automation toggled", "automation_id", id, "status", automation.Status)
	a.publish(ctx, id, events.NewAutomationToggled(id, automation.Status))

	return automation, nil
}

// Delete removes an automation together with its execution history.
func (a *Automation) Delete(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.fetch(ctx, "Delete", id); err != nil {
		return err
	}

	history, err := a.persistence.ExecutionRepository().GetByAutomation(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load execution history: %w", err)
	}

	// History goes first so a failure leaves the automation in place to retry.
	err = a.persistence.ExecutionRepository().DeleteByAutomation(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete execution history of %s: %w", id, err)
	}

	err = a.persistence.AutomationRepository().Delete(ctx, id)
	if err != nil {
		return err
	}

	a.logger.InfoContext(ctx, "Automation deleted", "automation_id", id, "executions_removed", len(history))
	a.publish(ctx, id, events.NewAutomationDeleted(id, len(history)))

	return nil
}

// AutomationFilter narrows List. Zero values match everything.
type AutomationFilter struct {
	Status     models.AutomationStatus
	ActionType models.ActionType
	SearchText string
}

// List returns automations in creation order. SearchText matches name or
// event label, case-insensitively.
func (a *Automation) List(ctx context.Context, filter AutomationFilter) ([]*models.Automation, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, filter.Status)
	}

	if filter.ActionType != "" && !filter.ActionType.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, filter.ActionType)
	}

	all, err := a.persistence.AutomationRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list automations: %w", err)
	}

	search := strings.ToLower(strings.TrimSpace(filter.SearchText))

	return slices.DeleteFunc(all, func(automation *models.Automation) bool {
		if filter.Status != "" && automation.Status != filter.Status {
			return true
		}

		if filter.ActionType != "" && automation.ActionType != filter.ActionType {
			return true
		}

		if search == "" {
			return false
		}

		return !strings.Contains(strings.ToLower(automation.Name), search) &&
			!strings.Contains(strings.ToLower(automation.EventLabel), search)
	}), nil
}

// FetchByID retrieves an automation by its ID.
func (a *Automation) FetchByID(ctx context.Context, id string) (*models.Automation, error) {
	return a.fetch(ctx, "FetchByID", id)
}

func (a *Automation) fetch(ctx context.Context, op, id string) (*models.Automation, error) {
	automation, err := a.persistence.AutomationRepository().GetByID(ctx, id)
	if err != nil {
		return nil, persistence.NewAutomationError(op, id, err)
	}

	if automation == nil {
		return nil, persistence.NewAutomationError(op, id, ErrAutomationNotFound)
	}

	return automation, nil
}
