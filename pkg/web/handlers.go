// Package web provides HTTP handlers and REST API endpoints for automation management.
package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/dukex/autoflow/pkg/catalog"
	"github.com/dukex/autoflow/pkg/eventbus"
	"github.com/dukex/autoflow/pkg/events"
	"github.com/dukex/autoflow/pkg/models"
	"github.com/dukex/autoflow/pkg/schema"
	"github.com/dukex/autoflow/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

const apiSource = "api"

type APIHandlers struct {
	catalog     *catalog.Catalog
	schemas     *schema.Registry
	automations *services.Automation
	executions  *services.Execution
	publisher   eventbus.EventPublisher
	validator   *validator.Validate
}

// NewAPIHandlers wires the handlers. publisher may be nil, in which case
// POST /events is rejected.
func NewAPIHandlers(
	registry *services.Registry,
	cat *catalog.Catalog,
	schemas *schema.Registry,
	publisher eventbus.EventPublisher,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		catalog:     cat,
		schemas:     schemas,
		automations: registry.Automations,
		executions:  registry.Executions,
		publisher:   publisher,
		validator:   validator,
	}
}

// Register mounts every endpoint on router.
func (h *APIHandlers) Register(router fiber.Router) {
	t := router.Group("/templates")
	t.Get("/", h.GetTemplates)
	t.Get("/popular", h.GetPopularTemplates)
	t.Get("/:slug", h.GetTemplate)

	e := router.Group("/events")
	e.Get("/", h.GetEvents)
	e.Post("/", h.PublishEvent)
	e.Get("/:type/schema", h.GetEventSchema)

	a := router.Group("/automations")
	a.Get("/", h.GetAutomations)
	a.Post("/", h.CreateAutomation)
	a.Post("/custom", h.CreateCustomAutomation)
	a.Get("/:id", h.GetAutomation)
	a.Post("/:id/toggle", h.ToggleAutomation)
	a.Delete("/:id", h.DeleteAutomation)
	a.Get("/:id/executions", h.GetAutomationExecutions)
	a.Post("/:id/executions", h.RecordExecution)

	x := router.Group("/executions")
	x.Get("/", h.GetExecutions)
	x.Get("/:id", h.GetExecution)
	x.Post("/:id/complete", h.CompleteExecution)

	router.Get("/stats", h.GetStats)
	router.Get("/health", h.HealthCheck)
}

func (h *APIHandlers) GetTemplates(c fiber.Ctx) error {
	filter := catalog.TemplateFilter{
		Category:   models.TemplateCategory(c.Query("category")),
		SearchText: c.Query("search"),
	}

	if filter.Category != "" && !filter.Category.IsValid() {
		return badRequest(c, "Unknown template category: "+string(filter.Category))
	}

	templates := h.catalog.ListTemplates(filter)

	return c.JSON(TemplateListResponse{Templates: templates, TotalCount: len(templates)})
}

func (h *APIHandlers) GetPopularTemplates(c fiber.Ctx) error {
	templates := h.catalog.ListPopular()

	return c.JSON(TemplateListResponse{Templates: templates, TotalCount: len(templates)})
}

func (h *APIHandlers) GetTemplate(c fiber.Ctx) error {
	tmpl, ok := h.catalog.GetTemplate(c.Params("slug"))
	if !ok {
		return notFound(c, "template_not_found", "Template not found")
	}

	return c.JSON(tmpl)
}

func (h *APIHandlers) GetEvents(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"categories": catalog.EventCategories(),
	})
}

func (h *APIHandlers) GetEventSchema(c fiber.Ctx) error {
	eventType := c.Params("type")

	payloadSchema, err := h.schemas.Schema(eventType)
	if err != nil {
		return notFound(c, "schema_not_found", "No payload schema for event type "+eventType)
	}

	return c.JSON(fiber.Map{
		"schema":      payloadSchema,
		"json_schema": payloadSchema.JSONSchema(),
	})
}

func (h *APIHandlers) PublishEvent(c fiber.Ctx) error {
	if h.publisher == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "no trigger pipeline is configured",
		})
	}

	var req PublishEventRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := catalog.ValidateEventType(req.EventType); err != nil {
		return validationError(c, err)
	}

	if err := h.schemas.ValidatePayload(req.EventType, req.Payload); err != nil {
		return validationError(c, err)
	}

	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = apiSource
	}

	event := events.NewTriggerReceived(req.EventType, source, req.Payload)

	if err := h.publisher.Publish(c.Context(), req.EventType, event); err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(PublishEventResponse{EventID: event.ID, EventType: event.EventType})
}

func (h *APIHandlers) GetAutomations(c fiber.Ctx) error {
	filter := services.AutomationFilter{
		Status:     models.AutomationStatus(c.Query("status")),
		ActionType: models.ActionType(c.Query("action_type")),
		SearchText: c.Query("search"),
	}

	automations, err := h.automations.List(c.Context(), filter)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(AutomationListResponse{Automations: automations, TotalCount: len(automations)})
}

func (h *APIHandlers) CreateAutomation(c fiber.Ctx) error {
	var req CreateAutomationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.automations.Create(c.Context(), req.TemplateSlug, req.Name, req.Config)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) CreateCustomAutomation(c fiber.Ctx) error {
	var req CreateCustomAutomationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.automations.CreateCustom(c.Context(), req.Name, req.Description)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) GetAutomation(c fiber.Ctx) error {
	automation, err := h.automations.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(automation)
}

func (h *APIHandlers) ToggleAutomation(c fiber.Ctx) error {
	automation, err := h.automations.Toggle(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(automation)
}

func (h *APIHandlers) DeleteAutomation(c fiber.Ctx) error {
	err := h.automations.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetAutomationExecutions(c fiber.Ctx) error {
	executions, err := h.executions.ListForAutomation(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(ExecutionListResponse{Executions: executions, TotalCount: len(executions)})
}

func (h *APIHandlers) RecordExecution(c fiber.Ctx) error {
	var req RecordExecutionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	execution, err := h.executions.Record(c.Context(), c.Params("id"), req.EventType, req.TriggerData)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(execution)
}

func (h *APIHandlers) GetExecutions(c fiber.Ctx) error {
	filter := services.ExecutionFilter{
		AutomationID: c.Query("automation_id"),
		Status:       models.ExecutionStatus(c.Query("status")),
	}

	executions, err := h.executions.List(c.Context(), filter)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(ExecutionListResponse{Executions: executions, TotalCount: len(executions)})
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	execution, err := h.executions.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) CompleteExecution(c fiber.Ctx) error {
	var req CompleteExecutionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	execution, err := h.executions.Complete(c.Context(), c.Params("id"), req.Status, req.ErrorMessage)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) GetStats(c fiber.Ctx) error {
	stats, err := h.executions.Stats(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(stats)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.automations.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Autoflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Autoflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"catalog":    h.catalog.Len(),
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
