package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/agrilearn/farmbudget-api/internal/dto"
	"github.com/agrilearn/farmbudget-api/internal/service"
	"github.com/agrilearn/farmbudget-api/internal/utils"
)

// ReviewHandler wires the trainer review endpoints.
type ReviewHandler struct {
	service service.ReviewService
	logger  zerolog.Logger
}

// NewReviewHandler constructs the handler.
func NewReviewHandler(service service.ReviewService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  logger.With().Str("component", "review_handler").Logger(),
	}
}

// Register attaches review endpoints to the trainer router group.
func (h *ReviewHandler) Register(router fiber.Router) {
	router.Get("/submissions", h.listActive)
	router.Get("/submissions/finalised", h.listFinalised)
	router.Get("/submissions/:id", h.detail)
	router.Post("/submissions/:id/feedback", h.feedback)
	router.Post("/submissions/:id/finalise", h.finalise)
	router.Post("/submissions/:id/reopen", h.reopen)
	router.Delete("/submissions/:id", h.remove)
}

func (h *ReviewHandler) listActive(c *fiber.Ctx) error {
	items, err := h.service.ListActive(c.Context(), identityFromContext(c))
	if err != nil {
		return handleServiceError(c, requestLogger(h.logger, c), err, "failed to list submissions")
	}

	return utils.SendSuccess(c, "submissions retrieved", items)
}

func (h *ReviewHandler) listFinalised(c *fiber.Ctx) error {
	items, err := h.service.ListFinalised(c.Context(), identityFromContext(c))
	if err != nil {
		return handleServiceError(c, requestLogger(h.logger, c), err, "failed to list submissions")
	}

	return utils.SendSuccess(c, "submissions retrieved", items)
}

func (h *ReviewHandler) detail(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	detail, err := h.service.GetDetail(c.Context(), identityFromContext(c), id)
	if err != nil {
		return handleServiceError(c, requestLogger(h.logger, c), err, "failed to load submission")
	}

	return utils.SendSuccess(c, "submission retrieved", detail)
}

func (h *ReviewHandler) feedback(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.FeedbackRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	submission, err := h.service.ProvideFeedback(c.Context(), identityFromContext(c), id, payload)
	if err != nil {
		return handleServiceError(c, requestLogger(h.logger, c), err, "failed to provide feedback")
	}

	return utils.SendSuccess(c, "feedback provided", submission)
}

func (h *ReviewHandler) finalise(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.FinaliseRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.Finalise(c.Context(), identityFromContext(c), id, payload)
	if err != nil {
		return handleServiceError(c, requestLogger(h.logger, c), err, "failed to finalise submission")
	}

	return utils.SendSuccess(c, "submission finalised", result)
}

func (h *ReviewHandler) reopen(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	submission, err := h.service.Reopen(c.Context(), identityFromContext(c), id)
	if err != nil {
		return handleServiceError(c, requestLogger(h.logger, c), err, "failed to reopen submission")
	}

	return utils.SendSuccess(c, "submission reopened", submission)
}

func (h *ReviewHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.service.Delete(c.Context(), identityFromContext(c), id); err != nil {
		return handleServiceError(c, requestLogger(h.logger, c), err, "failed to delete submission")
	}

	return utils.SendSuccess(c, "submission deleted", fiber.Map{"id": id})
}
