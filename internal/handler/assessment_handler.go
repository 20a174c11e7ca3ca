package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/agrilearn/farmbudget-api/internal/dto"
	"github.com/agrilearn/farmbudget-api/internal/service"
	"github.com/agrilearn/farmbudget-api/internal/utils"
)

// AssessmentHandler wires the trainer assessment editor endpoints and the
// student view of a published assessment.
type AssessmentHandler struct {
	service service.AssessmentService
	logger  zerolog.Logger
}

// NewAssessmentHandler constructs the handler.
func NewAssessmentHandler(service service.AssessmentService, logger zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assessment_handler").Logger(),
	}
}

// RegisterTrainer attaches editor endpoints to the trainer router group.
func (h *AssessmentHandler) RegisterTrainer(router fiber.Router) {
	router.Get("/assessments", h.list)
	router.Post("/assessments", h.create)
	router.Get("/assessments/:id", h.get)
	router.Put("/assessments/:id", h.update)
	router.Post("/assessments/:id/publish", h.publish)
}

// RegisterStudent attaches the read-only view to the student router group.
func (h *AssessmentHandler) RegisterStudent(router fiber.Router) {
	router.Get("/assessments/:id", h.studentView)
}

func (h *AssessmentHandler) list(c *fiber.Ctx) error {
	assessments, err := h.service.List(c.Context(), identityFromContext(c))
	if err != nil {
		return handleServiceError(c, requestLogger(h.logger, c), err, "failed to list assessments")
	}

	return utils.SendSuccess(c, "assessments retrieved", assessments)
}

func (h *AssessmentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	assessment, err := h.service.Get(c.Context(), identityFromContext(c), id)
	if err != nil {
		return handleServiceError(c, requestLogger(h.logger, c), err, "failed to load assessment")
	}

	return utils.SendSuccess(c, "assessment retrieved", assessment)
}

func (h *AssessmentHandler) create(c *fiber.Ctx) error {
	var payload dto.AssessmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	assessment, err := h.service.Create(c.Context(), identityFromContext(c), payload)
	if err != nil {
		return handleServiceError(c, requestLogger(h.logger, c), err, "failed to create assessment")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assessment created", assessment)
}

func (h *AssessmentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.AssessmentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	assessment, err := h.service.Update(c.Context(), identityFromContext(c), id, payload)
	if err != nil {
		return handleServiceError(c, requestLogger(h.logger, c), err, "failed to update assessment")
	}

	return utils.SendSuccess(c, "assessment updated", assessment)
}

func (h *AssessmentHandler) publish(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	assessment, err := h.service.Publish(c.Context(), identityFromContext(c), id)
	if err != nil {
		return handleServiceError(c, requestLogger(h.logger, c), err, "failed to publish assessment")
	}

	return utils.SendSuccess(c, "assessment published", assessment)
}

func (h *AssessmentHandler) studentView(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	assessment, err := h.service.StudentView(c.Context(), identityFromContext(c), id)
	if err != nil {
		return handleServiceError(c, requestLogger(h.logger, c), err, "failed to load assessment")
	}

	return utils.SendSuccess(c, "assessment retrieved", assessment)
}
