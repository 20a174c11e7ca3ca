package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/agrilearn/farmbudget-api/internal/dto"
	"github.com/agrilearn/farmbudget-api/internal/service"
	"github.com/agrilearn/farmbudget-api/internal/utils"
)

// SettingsHandler wires the site settings endpoints.
type SettingsHandler struct {
	service service.SettingsService
	logger  zerolog.Logger
}

// NewSettingsHandler constructs the handler.
func NewSettingsHandler(service service.SettingsService, logger zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		logger:  logger.With().Str("component", "settings_handler").Logger(),
	}
}

// RegisterPublic attaches the read endpoint to the unauthenticated group so
// the login page can show course branding.
func (h *SettingsHandler) RegisterPublic(router fiber.Router) {
	router.Get("/settings", h.get)
}

// RegisterTrainer attaches the write endpoints to the trainer router group.
func (h *SettingsHandler) RegisterTrainer(router fiber.Router) {
	router.Put("/settings", h.update)
	router.Put("/settings/active-assessment", h.setActiveAssessment)
}

func (h *SettingsHandler) get(c *fiber.Ctx) error {
	settings, err := h.service.Get(c.Context())
	if err != nil {
		return handleServiceError(c, requestLogger(h.logger, c), err, "failed to load settings")
	}

	return utils.SendSuccess(c, "settings retrieved", settings)
}

func (h *SettingsHandler) update(c *fiber.Ctx) error {
	var payload dto.SiteSettingsUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	settings, err := h.service.Update(c.Context(), identityFromContext(c), payload)
	if err != nil {
		return handleServiceError(c, requestLogger(h.logger, c), err, "failed to update settings")
	}

	return utils.SendSuccess(c, "settings updated", settings)
}

func (h *SettingsHandler) setActiveAssessment(c *fiber.Ctx) error {
	var payload dto.SetActiveAssessmentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	settings, err := h.service.SetActiveAssessment(c.Context(), identityFromContext(c), payload)
	if err != nil {
		return handleServiceError(c, requestLogger(h.logger, c), err, "failed to set active assessment")
	}

	return utils.SendSuccess(c, "active assessment updated", settings)
}
