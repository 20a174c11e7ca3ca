package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/agrilearn/farmbudget-api/internal/dto"
	"github.com/agrilearn/farmbudget-api/internal/service"
	"github.com/agrilearn/farmbudget-api/internal/utils"
)

// SubmissionHandler wires the student submission lifecycle endpoints.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches submission endpoints to the student router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Get("/submission", h.load)
	router.Put("/submission", h.save)
	router.Post("/submission/submit", h.submit)
}

func (h *SubmissionHandler) load(c *fiber.Ctx) error {
	actor := identityFromContext(c)
	submission, err := h.service.CreateOrLoad(c.Context(), actor)
	if err != nil {
		return handleServiceError(c, requestLogger(h.logger, c), err, "failed to load submission")
	}

	return utils.SendSuccess(c, "submission loaded", submission)
}

func (h *SubmissionHandler) save(c *fiber.Ctx) error {
	var payload dto.SubmissionSaveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	actor := identityFromContext(c)
	submission, err := h.service.SaveDraft(c.Context(), actor, payload)
	if err != nil {
		return handleServiceError(c, requestLogger(h.logger, c), err, "failed to save submission")
	}

	return utils.SendSuccess(c, "submission saved", submission)
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	var payload dto.SubmissionSaveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	actor := identityFromContext(c)
	submission, err := h.service.Submit(c.Context(), actor, payload)
	if err != nil {
		return handleServiceError(c, requestLogger(h.logger, c), err, "failed to submit assessment")
	}

	return utils.SendSuccess(c, "assessment submitted", submission)
}
