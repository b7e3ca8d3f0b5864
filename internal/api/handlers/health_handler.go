package handlers

import (
	"askhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	healthService *service.HealthService
}

func NewHealthHandler(healthService *service.HealthService) *HealthHandler {
	return &HealthHandler{healthService: healthService}
}

func (h *HealthHandler) Basic(c *fiber.Ctx) error {
	return c.JSON(h.healthService.Basic())
}

func (h *HealthHandler) Detailed(c *fiber.Ctx) error {
	status := h.healthService.Detailed(c.Context())
	if status.Status != "healthy" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(status)
	}
	return c.JSON(status)
}
