package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/deployment-service/internal/api/dto"
	"github.com/fieldops/deployment-service/internal/auth"
	"github.com/fieldops/deployment-service/internal/service"
	apperrors "github.com/fieldops/deployment-service/pkg/util"
)

// MetadataHandler serves the listings clients use to populate forms.
type MetadataHandler struct {
	service *service.MetadataService
}

// NewMetadataHandler constructs handler.
func NewMetadataHandler(metadataService *service.MetadataService) *MetadataHandler {
	return &MetadataHandler{service: metadataService}
}

// Customers GET /customers.
func (h *MetadataHandler) Customers(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	customers, err := h.service.ListCustomers(c.Context(), account)
	if err != nil {
		return err
	}
	items := make([]dto.CustomerResponse, 0, len(customers))
	for _, customer := range customers {
		items = append(items, dto.CustomerResponse{
			ID:           customer.ID,
			Company:      customer.Company,
			Abbreviation: customer.Abbreviation,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Deployments GET /deployments. Same scoping as the index route but the
// items carry their customer and omit system ids.
func (h *MetadataHandler) Deployments(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	deployments, err := h.service.ListDeployments(c.Context(), account)
	if err != nil {
		return err
	}
	items := make([]dto.DeploymentResponse, 0, len(deployments))
	for i := range deployments {
		items = append(items, deploymentResponse(&deployments[i], true, false))
	}
	return c.JSON(fiber.Map{"data": items})
}

// HardwareModels GET /hw-models.
func (h *MetadataHandler) HardwareModels(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.service.HardwareModels()})
}

// IsAdmin GET /is-admin.
func (h *MetadataHandler) IsAdmin(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	admin, err := h.service.IsAdmin(c.Context(), account)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"isAdmin": admin}})
}
