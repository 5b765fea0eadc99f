package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/deployment-service/internal/auth"
	"github.com/fieldops/deployment-service/internal/domain"
	"github.com/fieldops/deployment-service/internal/service"
	apperrors "github.com/fieldops/deployment-service/pkg/util"
)

// ChecklistHandler manages the admin-gated installation checklist.
type ChecklistHandler struct {
	service *service.ChecklistService
}

// NewChecklistHandler constructs handler.
func NewChecklistHandler(checklistService *service.ChecklistService) *ChecklistHandler {
	return &ChecklistHandler{service: checklistService}
}

// UpdateAnnotation PATCH /:id/annotation. The body replaces the technician
// annotation blob wholesale.
func (h *ChecklistHandler) UpdateAnnotation(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	body := c.Body()
	if len(body) == 0 || !json.Valid(body) {
		return apperrors.NewValidationError("invalid annotation payload", nil)
	}

	if err := h.service.UpdateTechnicianAnnotation(c.Context(), account, id, json.RawMessage(body)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "technician annotation updated"})
}

// SetConstructionSitePreparation POST /:id/construction-site-preparation.
func (h *ChecklistHandler) SetConstructionSitePreparation(c *fiber.Ctx) error {
	return h.setFlag(c, domain.ChecklistConstructionSitePreparation, "construction site preparation feedback updated")
}

// SetInternetConnection POST /:id/internet-connection.
func (h *ChecklistHandler) SetInternetConnection(c *fiber.Ctx) error {
	return h.setFlag(c, domain.ChecklistInternetConnection, "internet connection set")
}

// SetHardwareInstallation POST /:id/hardware-installation.
func (h *ChecklistHandler) SetHardwareInstallation(c *fiber.Ctx) error {
	return h.setFlag(c, domain.ChecklistHardwareInstallation, "hardware installation set")
}

func (h *ChecklistHandler) setFlag(c *fiber.Ctx, flag domain.ChecklistFlag, message string) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	done, err := truthy(c.Body())
	if err != nil {
		return err
	}
	if err := h.service.SetFlag(c.Context(), account, id, flag, done); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": message})
}
