package handlers

import (
	"capristore/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// IntegrationHandler serves the inventory reconciliation view.
type IntegrationHandler struct {
	service *services.IntegrationService
	logger  *zap.Logger
}

// NewIntegrationHandler creates a new IntegrationHandler.
func NewIntegrationHandler(service *services.IntegrationService, logger *zap.Logger) *IntegrationHandler {
	return &IntegrationHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterAdminRoutes registers the integration routes on an admin-only group.
func (h *IntegrationHandler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Get("/integration/report", h.HandleReport)
}

// HandleReport compares the local and external feeds. It accepts the same
// query filters as the catalog listing.
func (h *IntegrationHandler) HandleReport(c *fiber.Ctx) error {
	filter, err := filterFromQuery(c)
	if err != nil {
		return respondError(c, h.logger, "Invalid filter", err)
	}
	report, err := h.service.Reconcile(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.logger, "Could not build reconciliation report", err)
	}
	return c.JSON(report)
}
