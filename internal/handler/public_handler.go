package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/agrilearn/farmbudget-api/internal/observability"
	"github.com/agrilearn/farmbudget-api/internal/service"
	"github.com/agrilearn/farmbudget-api/internal/utils"
)

// PublicHandler serves finalised submissions to anonymous share link holders.
type PublicHandler struct {
	service service.PublicService
	logger  zerolog.Logger
}

// NewPublicHandler constructs the handler.
func NewPublicHandler(service service.PublicService, logger zerolog.Logger) *PublicHandler {
	return &PublicHandler{
		service: service,
		logger:  logger.With().Str("component", "public_handler").Logger(),
	}
}

// Register attaches the public view endpoint to the unauthenticated group.
func (h *PublicHandler) Register(router fiber.Router) {
	router.Get("/assessments/:id", h.view)
}

func (h *PublicHandler) view(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		observability.PublicViews().WithLabelValues("rejected").Inc()
		return utils.SendError(c, fiber.StatusForbidden, service.ErrPublicViewRejected.Error())
	}

	submission, err := h.service.View(c.Context(), id, c.Query("token"))
	if err != nil {
		if errors.Is(err, service.ErrPublicViewRejected) {
			observability.PublicViews().WithLabelValues("rejected").Inc()
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to serve public view")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load assessment")
	}

	observability.PublicViews().WithLabelValues("accepted").Inc()

	return utils.SendSuccess(c, "assessment retrieved", submission)
}
