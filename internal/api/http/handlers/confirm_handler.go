package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/deployment-service/internal/api/dto"
	"github.com/fieldops/deployment-service/internal/auth"
	"github.com/fieldops/deployment-service/internal/service"
	apperrors "github.com/fieldops/deployment-service/pkg/util"
)

// ConfirmHandler drives the staged-deployment submission and confirmation
// endpoints. Confirm is public: possession of the link is the credential.
type ConfirmHandler struct {
	service *service.ConfirmationService
}

// NewConfirmHandler constructs handler.
func NewConfirmHandler(confirmationService *service.ConfirmationService) *ConfirmHandler {
	return &ConfirmHandler{service: confirmationService}
}

// Submit POST /submit.
func (h *ConfirmHandler) Submit(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	var req dto.SubmitDeploymentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.SubmissionInput{
		Connection: req.Connection,
		Address:    addressInput(req.Address),
		Annotation: req.Annotation,
		Email:      req.Email,
		CustomerID: req.Customer,
	}
	staged, err := h.service.Submit(c.Context(), account, input)
	if err != nil {
		return err
	}

	resp := dto.StagedDeploymentResponse{
		ID:         staged.ID,
		Customer:   staged.CustomerID,
		Connection: staged.Connection,
		Annotation: staged.Annotation,
		CreatedAt:  staged.CreatedAt,
	}
	if address := addressPayload(staged.Address); address != nil {
		resp.Address = *address
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": resp})
}

// Confirm GET /confirm/:token.
func (h *ConfirmHandler) Confirm(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return apperrors.NewValidationError("malformed confirmation token", nil)
	}
	deployment, err := h.service.Confirm(c.Context(), token)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "deployment confirmed",
		"data":    fiber.Map{"id": deployment.ID},
	})
}
