package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/fieldops/deployment-service/internal/authz"
	"github.com/fieldops/deployment-service/internal/confirm"
	"github.com/fieldops/deployment-service/internal/domain"
	"github.com/fieldops/deployment-service/internal/events"
	"github.com/fieldops/deployment-service/internal/repository"
	"github.com/fieldops/deployment-service/pkg/util"
)

// ConfirmationService manages the staged-deployment flow: a submission
// creates a provisional record and mails out a link embedding its encrypted
// id; visiting the link promotes the record to a permanent deployment.
// Tokens carry no expiry.
type ConfirmationService struct {
	staged      repository.StagedDeploymentRepository
	deployments repository.DeploymentRepository
	addresses   repository.AddressRepository
	customers   repository.CustomerRepository
	resolver    *authz.Resolver
	codec       *confirm.Codec
	dispatcher  events.Dispatcher
	baseURL     string
}

// ConfirmationDependencies bundles collaborators for the confirmation flow.
type ConfirmationDependencies struct {
	StagedRepo     repository.StagedDeploymentRepository
	DeploymentRepo repository.DeploymentRepository
	AddressRepo    repository.AddressRepository
	CustomerRepo   repository.CustomerRepository
	Resolver       *authz.Resolver
	Codec          *confirm.Codec
	Dispatcher     events.Dispatcher
	PublicBaseURL  string
}

// NewConfirmationService constructs the service.
func NewConfirmationService(deps ConfirmationDependencies) *ConfirmationService {
	return &ConfirmationService{
		staged:      deps.StagedRepo,
		deployments: deps.DeploymentRepo,
		addresses:   deps.AddressRepo,
		customers:   deps.CustomerRepo,
		resolver:    deps.Resolver,
		codec:       deps.Codec,
		dispatcher:  deps.Dispatcher,
		baseURL:     deps.PublicBaseURL,
	}
}

// SubmissionInput describes a staged-deployment submission.
type SubmissionInput struct {
	Connection string
	Address    *AddressInput
	Annotation *string
	Email      string
	CustomerID *int64
}

// Submit stages a deployment and emits the notification event carrying the
// confirmation link.
func (s *ConfirmationService) Submit(ctx context.Context, account *domain.Account, input SubmissionInput) (*domain.StagedDeployment, error) {
	if input.Connection == "" {
		return nil, util.NewMissingField("connection")
	}
	connection, ok := domain.ParseConnectionType(input.Connection)
	if !ok {
		return nil, util.NewValidationError("invalid connection", map[string]any{"connection": input.Connection})
	}
	if input.Address == nil {
		return nil, util.NewMissingField("address")
	}
	if input.Email == "" {
		return nil, util.NewMissingField("email")
	}

	role, err := s.resolver.Resolve(ctx, account)
	if err != nil {
		return nil, util.MapError(err)
	}
	customerID := account.CustomerID
	if input.CustomerID != nil {
		customerID = *input.CustomerID
	}
	if !role.CanAccessCustomer(customerID) {
		return nil, util.NewNotFound("customer", nil)
	}
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return nil, notFoundOnNoRows(err, "customer")
	}

	address := &domain.Address{
		Street:      input.Address.Street,
		HouseNumber: input.Address.HouseNumber,
		ZipCode:     input.Address.ZipCode,
		City:        input.Address.City,
		State:       input.Address.State,
	}
	if address.Street == "" {
		return nil, util.NewMissingField("street")
	}
	if address.HouseNumber == "" {
		return nil, util.NewMissingField("house number")
	}
	if address.ZipCode == "" {
		return nil, util.NewMissingField("ZIP code")
	}
	if address.City == "" {
		return nil, util.NewMissingField("city")
	}
	if err := s.addresses.AddOrGet(ctx, address); err != nil {
		return nil, util.MapError(err)
	}

	staged := &domain.StagedDeployment{
		ID:             uuid.NewString(),
		CustomerID:     customerID,
		Connection:     connection,
		AddressID:      address.ID,
		Annotation:     input.Annotation,
		SubmitterEmail: input.Email,
		Address:        address,
	}
	if err := s.staged.Create(ctx, staged); err != nil {
		return nil, util.MapError(err)
	}

	link, err := s.confirmationLink(staged.ID)
	if err != nil {
		return nil, util.MapError(err)
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventStagedSubmitted,
		AccountID: &account.ID,
		Payload: events.StagedSubmittedPayload{
			StagedID:         staged.ID,
			CustomerID:       staged.CustomerID,
			SubmitterEmail:   staged.SubmitterEmail,
			ConfirmationLink: link,
		},
	})
	return staged, nil
}

// Confirm decrypts the token, promotes the staged record to a permanent
// deployment and deletes the staging row.
func (s *ConfirmationService) Confirm(ctx context.Context, token string) (*domain.Deployment, error) {
	id, err := s.codec.Decrypt(token)
	if err != nil {
		if errors.Is(err, confirm.ErrDecryptFailed) {
			return nil, util.NewDomainError("TOKEN_DECRYPT_FAILED", "confirmation token could not be decrypted", http.StatusBadRequest, nil)
		}
		return nil, util.NewValidationError("malformed confirmation token", nil)
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, util.NewValidationError("malformed confirmation token", nil)
	}

	staged, err := s.staged.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOnNoRows(err, "staged deployment")
	}

	deployment := &domain.Deployment{
		CustomerID: staged.CustomerID,
		Type:       domain.DeploymentTypeDDB,
		Connection: staged.Connection,
		AddressID:  staged.AddressID,
		Annotation: staged.Annotation,
		Address:    staged.Address,
	}
	if err := s.deployments.Create(ctx, deployment); err != nil {
		return nil, util.MapError(err)
	}
	if err := s.staged.Delete(ctx, staged.ID); err != nil {
		return nil, notFoundOnNoRows(err, "staged deployment")
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type: events.EventStagedConfirmed,
		Payload: events.StagedConfirmedPayload{
			StagedID:     staged.ID,
			DeploymentID: deployment.ID,
		},
	})
	return deployment, nil
}

func (s *ConfirmationService) confirmationLink(stagedID string) (string, error) {
	token, err := s.codec.Encrypt(stagedID)
	if err != nil {
		return "", fmt.Errorf("encrypt confirmation token: %w", err)
	}
	return fmt.Sprintf("%s/confirm/%s", s.baseURL, token), nil
}
