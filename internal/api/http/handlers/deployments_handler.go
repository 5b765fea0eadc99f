package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/deployment-service/internal/api/dto"
	"github.com/fieldops/deployment-service/internal/auth"
	"github.com/fieldops/deployment-service/internal/domain"
	"github.com/fieldops/deployment-service/internal/service"
	apperrors "github.com/fieldops/deployment-service/pkg/util"
)

// DeploymentsHandler manages deployment CRUD endpoints.
type DeploymentsHandler struct {
	service *service.DeploymentService
}

// NewDeploymentsHandler constructs handler.
func NewDeploymentsHandler(deploymentService *service.DeploymentService) *DeploymentsHandler {
	return &DeploymentsHandler{service: deploymentService}
}

// List GET /.
func (h *DeploymentsHandler) List(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	deployments, err := h.service.List(c.Context(), account)
	if err != nil {
		return err
	}
	items := make([]dto.DeploymentResponse, 0, len(deployments))
	for i := range deployments {
		items = append(items, deploymentResponse(&deployments[i], false, true))
	}
	return c.JSON(fiber.Map{"data": items})
}

// All GET /all. Root only; enforced by the route guard.
func (h *DeploymentsHandler) All(c *fiber.Ctx) error {
	grouped, err := h.service.All(c.Context())
	if err != nil {
		return err
	}
	response := make(map[string][]dto.DeploymentResponse, len(grouped))
	for customerID, deployments := range grouped {
		items := make([]dto.DeploymentResponse, 0, len(deployments))
		for i := range deployments {
			items = append(items, deploymentResponse(&deployments[i], false, true))
		}
		response[strconv.FormatInt(customerID, 10)] = items
	}
	return c.JSON(fiber.Map{"data": response})
}

// Get GET /:id.
func (h *DeploymentsHandler) Get(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	deployment, err := h.service.Get(c.Context(), account, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": deploymentResponse(deployment, true, true)})
}

// Create POST /.
func (h *DeploymentsHandler) Create(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	var req dto.CreateDeploymentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.DeploymentCreateInput{
		Type:       req.Type,
		Connection: req.Connection,
		Address:    addressInput(req.Address),
		LPTAddress: addressInput(req.LptAddress),
		Scheduled:  req.Scheduled,
		Annotation: req.Annotation,
		Testing:    req.Testing,
		CustomerID: req.Customer,
	}
	deployment, err := h.service.Create(c.Context(), account, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"id": deployment.ID}})
}

// Patch PATCH /:id.
func (h *DeploymentsHandler) Patch(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateDeploymentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	scheduled, err := optionalString(req.Scheduled, "scheduled")
	if err != nil {
		return err
	}
	annotation, err := optionalString(req.Annotation, "annotation")
	if err != nil {
		return err
	}

	input := service.DeploymentPatchInput{
		Type:       req.Type,
		Connection: req.Connection,
		Address:    addressInput(req.Address),
		LPTAddress: addressInput(req.LptAddress),
		Scheduled:  scheduled,
		Annotation: annotation,
		Testing:    req.Testing,
	}
	deployment, err := h.service.Patch(c.Context(), account, id, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": deploymentResponse(deployment, true, true)})
}

// Delete DELETE /:id.
func (h *DeploymentsHandler) Delete(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Context(), account, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "deployment deleted"})
}

// parseID reads the :id route parameter. Non-numeric ids behave like
// absent deployments.
func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewNotFound("deployment", nil)
	}
	return id, nil
}

func addressInput(payload *dto.AddressPayload) *service.AddressInput {
	if payload == nil {
		return nil
	}
	return &service.AddressInput{
		Street:      payload.Street,
		HouseNumber: payload.HouseNumber,
		ZipCode:     payload.ZipCode,
		City:        payload.City,
		State:       payload.State,
	}
}

func addressPayload(address *domain.Address) *dto.AddressPayload {
	if address == nil {
		return nil
	}
	return &dto.AddressPayload{
		Street:      address.Street,
		HouseNumber: address.HouseNumber,
		ZipCode:     address.ZipCode,
		City:        address.City,
		State:       address.State,
	}
}

func deploymentResponse(deployment *domain.Deployment, includeCustomer, includeSystems bool) dto.DeploymentResponse {
	resp := dto.DeploymentResponse{
		ID:         deployment.ID,
		Type:       deployment.Type,
		Connection: deployment.Connection,
		Scheduled:  deployment.Scheduled,
		Annotation: deployment.Annotation,
		Testing:    deployment.Testing,

		TechnicianAnnotation:                deployment.TechnicianAnnotation,
		ConstructionSitePreparationFeedback: deployment.ConstructionSitePreparationFeedback,
		InternetConnection:                  deployment.InternetConnection,
		HardwareInstallation:                deployment.HardwareInstallation,

		CreatedAt: deployment.CreatedAt,
		UpdatedAt: deployment.UpdatedAt,
	}
	if address := addressPayload(deployment.Address); address != nil {
		resp.Address = *address
	}
	resp.LptAddress = addressPayload(deployment.LPTAddress)
	if includeCustomer && deployment.Customer != nil {
		resp.Customer = &dto.CustomerResponse{
			ID:           deployment.Customer.ID,
			Company:      deployment.Customer.Company,
			Abbreviation: deployment.Customer.Abbreviation,
		}
	}
	if includeSystems {
		resp.Systems = deployment.Systems
	}
	return resp
}
