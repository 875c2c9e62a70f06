package web

import (
	"errors"

	"github.com/dukex/autoflow/pkg/schema"
	"github.com/dukex/autoflow/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

// ValidationProblem extends the problem document with the offending fields.
type ValidationProblem struct {
	*problems.Problem
	MissingFields       []string `json:"missing_fields,omitempty"`
	InvalidFields       []string `json:"invalid_fields,omitempty"`
	UnknownPlaceholders []string `json:"unknown_placeholders,omitempty"`
	Violations          []string `json:"violations,omitempty"`
}

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, kind, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType(kind).
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

func validationError(c fiber.Ctx, err error) error {
	problem := &ValidationProblem{
		Problem: problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("validation_error").
			WithDetail(err.Error()),
	}

	var configErr *services.ValidationError
	if errors.As(err, &configErr) {
		problem.MissingFields = configErr.MissingFields
		problem.InvalidFields = configErr.InvalidFields
		problem.UnknownPlaceholders = configErr.UnknownPlaceholders
	}

	var payloadErr *schema.PayloadError
	if errors.As(err, &payloadErr) {
		problem.Violations = payloadErr.Violations
	}

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

// handleServiceError provides typed error handling for service layer errors.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsValidationError(err):
		return validationError(c, err)

	case services.IsConflictError(err):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("conflict").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case errors.Is(err, services.ErrAutomationNotFound):
		return notFound(c, "automation_not_found", "automation not found")

	case errors.Is(err, services.ErrExecutionNotFound):
		return notFound(c, "execution_not_found", "execution not found")

	case errors.Is(err, services.ErrTemplateNotFound):
		return notFound(c, "template_not_found", "template not found")

	default:
		return internalError(c, err)
	}
}
