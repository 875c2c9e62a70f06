// Package catalog holds the read-only table of automation templates and the
// platform event taxonomy they are triggered by.
package catalog

import (
	"fmt"
	"strings"

	"github.com/dukex/autoflow/pkg/models"
)

// TemplateFilter narrows ListTemplates. Zero values match everything.
type TemplateFilter struct {
	Category   models.TemplateCategory
	SearchText string
}

// Catalog is the immutable set of automation templates.
type Catalog struct {
	templates []models.AutomationTemplate
	bySlug    map[string]int
}

// New builds a catalog, rejecting invalid templates and duplicate slugs.
func New(templates []models.AutomationTemplate) (*Catalog, error) {
	c := &Catalog{
		templates: make([]models.AutomationTemplate, 0, len(templates)),
		bySlug:    make(map[string]int, len(templates)),
	}

	for _, tmpl := range templates {
		if err := tmpl.Validate(); err != nil {
			return nil, err
		}

		if _, dup := c.bySlug[tmpl.Slug]; dup {
			return nil, fmt.Errorf("duplicate template slug %q", tmpl.Slug)
		}

		if err := ValidateEventType(tmpl.EventType); err != nil {
			return nil, fmt.Errorf("template %s: %w", tmpl.Slug, err)
		}

		c.bySlug[tmpl.Slug] = len(c.templates)
		c.templates = append(c.templates, tmpl.Clone())
	}

	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(builtinTemplates)
	if err != nil {
		panic(fmt.Errorf("invalid built-in template catalog: %w", err))
	}

	return c
}

// ListTemplates returns the templates matching filter in catalog order.
func (c *Catalog) ListTemplates(filter TemplateFilter) []models.AutomationTemplate {
	search := strings.ToLower(strings.TrimSpace(filter.SearchText))
	result := make([]models.AutomationTemplate, 0, len(c.templates))

	for _, tmpl := range c.templates {
		if filter.Category != "" && tmpl.Category != filter.Category {
			continue
		}

		if search != "" &&
			!strings.Contains(strings.ToLower(tmpl.Name), search) &&
			!strings.Contains(strings.ToLower(tmpl.Description), search) {
			continue
		}

		result = append(result, tmpl.Clone())
	}

	return result
}

// GetTemplate looks a template up by slug. A missing slug is reported through
// the boolean, never as an error.
func (c *Catalog) GetTemplate(slug string) (models.AutomationTemplate, bool) {
	idx, ok := c.bySlug[slug]
	if !ok {
		return models.AutomationTemplate{}, false
	}

	return c.templates[idx].Clone(), true
}

// Has reports whether slug exists.
func (c *Catalog) Has(slug string) bool {
	_, ok := c.bySlug[slug]

	return ok
}

// ListPopular returns popular templates in catalog order.
func (c *Catalog) ListPopular() []models.AutomationTemplate {
	result := make([]models.AutomationTemplate, 0)

	for _, tmpl := range c.templates {
		if tmpl.IsPopular {
			result = append(result, tmpl.Clone())
		}
	}

	return result
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	return len(c.templates)
}
