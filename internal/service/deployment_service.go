package service

import (
	"context"
	"time"

	"github.com/fieldops/deployment-service/internal/authz"
	"github.com/fieldops/deployment-service/internal/domain"
	"github.com/fieldops/deployment-service/internal/events"
	"github.com/fieldops/deployment-service/internal/repository"
	"github.com/fieldops/deployment-service/pkg/util"
)

// DeploymentService coordinates deployment CRUD within the caller's
// resolved visibility scope.
type DeploymentService struct {
	deployments repository.DeploymentRepository
	addresses   repository.AddressRepository
	customers   repository.CustomerRepository
	resolver    *authz.Resolver
	dispatcher  events.Dispatcher
}

// DeploymentDependencies bundles collaborators for the deployment service.
type DeploymentDependencies struct {
	DeploymentRepo repository.DeploymentRepository
	AddressRepo    repository.AddressRepository
	CustomerRepo   repository.CustomerRepository
	Resolver       *authz.Resolver
	Dispatcher     events.Dispatcher
}

// NewDeploymentService constructs the service.
func NewDeploymentService(deps DeploymentDependencies) *DeploymentService {
	return &DeploymentService{
		deployments: deps.DeploymentRepo,
		addresses:   deps.AddressRepo,
		customers:   deps.CustomerRepo,
		resolver:    deps.Resolver,
		dispatcher:  deps.Dispatcher,
	}
}

// AddressInput describes an address payload.
type AddressInput struct {
	Street      string
	HouseNumber string
	ZipCode     string
	City        string
	State       *string
}

// DeploymentCreateInput describes deployment creation.
type DeploymentCreateInput struct {
	Type       string
	Connection string
	Address    *AddressInput
	LPTAddress *AddressInput
	Scheduled  *string
	Annotation *string
	Testing    bool
	CustomerID *int64
}

// OptionalString distinguishes an absent JSON key from an explicit null.
type OptionalString struct {
	Present bool
	Value   *string
}

// DeploymentPatchInput describes a partial update. Nil pointer / absent
// optional means "leave the field untouched".
type DeploymentPatchInput struct {
	Type       *string
	Connection *string
	Address    *AddressInput
	LPTAddress *AddressInput
	Scheduled  OptionalString
	Annotation OptionalString
	Testing    *bool
}

// List returns the deployments within the caller's resolved scope.
func (s *DeploymentService) List(ctx context.Context, account *domain.Account) ([]domain.Deployment, error) {
	role, err := s.resolver.Resolve(ctx, account)
	if err != nil {
		return nil, util.MapError(err)
	}
	deployments, err := s.deployments.List(ctx, role.Scope())
	if err != nil {
		return nil, util.MapError(err)
	}
	return deployments, nil
}

// All returns every deployment grouped by customer id. Root only; the
// route guard enforces the role.
func (s *DeploymentService) All(ctx context.Context) (map[int64][]domain.Deployment, error) {
	deployments, err := s.deployments.List(ctx, authz.Scope{All: true})
	if err != nil {
		return nil, util.MapError(err)
	}
	grouped := make(map[int64][]domain.Deployment)
	for _, deployment := range deployments {
		grouped[deployment.CustomerID] = append(grouped[deployment.CustomerID], deployment)
	}
	return grouped, nil
}

// Get returns one deployment in scope. Out-of-scope ids are reported as
// not found so existence does not leak.
func (s *DeploymentService) Get(ctx context.Context, account *domain.Account, id int64) (*domain.Deployment, error) {
	role, err := s.resolver.Resolve(ctx, account)
	if err != nil {
		return nil, util.MapError(err)
	}
	deployment, err := s.deployments.GetByID(ctx, id, role.Scope())
	if err != nil {
		return nil, notFoundOnNoRows(err, "deployment")
	}
	return deployment, nil
}

// Create validates and persists a new deployment.
func (s *DeploymentService) Create(ctx context.Context, account *domain.Account, input DeploymentCreateInput) (*domain.Deployment, error) {
	if input.Type == "" {
		return nil, util.NewMissingField("type")
	}
	deploymentType, ok := domain.ParseDeploymentType(input.Type)
	if !ok {
		return nil, util.NewValidationError("invalid type", map[string]any{"type": input.Type})
	}

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

	role, err := s.resolver.Resolve(ctx, account)
	if err != nil {
		return nil, util.MapError(err)
	}
	customerID, err := s.targetCustomer(ctx, account, role, input.CustomerID)
	if err != nil {
		return nil, err
	}

	address, err := s.resolveAddress(ctx, input.Address)
	if err != nil {
		return nil, err
	}

	var (
		lptAddress   *domain.Address
		lptAddressID *int64
	)
	if input.LPTAddress != nil {
		lptAddress, err = s.resolveAddress(ctx, input.LPTAddress)
		if err != nil {
			return nil, err
		}
		lptAddressID = &lptAddress.ID
	}

	scheduled, err := parseScheduled(input.Scheduled)
	if err != nil {
		return nil, err
	}

	deployment := &domain.Deployment{
		CustomerID:   customerID,
		Type:         deploymentType,
		Connection:   connection,
		AddressID:    address.ID,
		LPTAddressID: lptAddressID,
		Scheduled:    scheduled,
		Annotation:   input.Annotation,
		Testing:      input.Testing,

		Address:    address,
		LPTAddress: lptAddress,
	}
	if err := s.deployments.Create(ctx, deployment); err != nil {
		return nil, util.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventDeploymentCreated,
		AccountID: &account.ID,
		Payload: events.DeploymentCreatedPayload{
			DeploymentID: deployment.ID,
			CustomerID:   deployment.CustomerID,
			Type:         deployment.Type,
			Connection:   deployment.Connection,
		},
	})
	return deployment, nil
}

// Patch applies a partial update: only present keys touch fields. The
// systems-deployed lock guards the whole mutation for non-root accounts.
func (s *DeploymentService) Patch(ctx context.Context, account *domain.Account, id int64, input DeploymentPatchInput) (*domain.Deployment, error) {
	role, err := s.resolver.Resolve(ctx, account)
	if err != nil {
		return nil, util.MapError(err)
	}
	deployment, err := s.deployments.GetByID(ctx, id, role.Scope())
	if err != nil {
		return nil, notFoundOnNoRows(err, "deployment")
	}
	if err := authz.CanModify(account, deployment.Systems); err != nil {
		return nil, err
	}

	var changed []string

	if input.Type != nil {
		deploymentType, ok := domain.ParseDeploymentType(*input.Type)
		if !ok {
			return nil, util.NewValidationError("invalid type", map[string]any{"type": *input.Type})
		}
		deployment.Type = deploymentType
		changed = append(changed, "type")
	}
	if input.Connection != nil {
		connection, ok := domain.ParseConnectionType(*input.Connection)
		if !ok {
			return nil, util.NewValidationError("invalid connection", map[string]any{"connection": *input.Connection})
		}
		deployment.Connection = connection
		changed = append(changed, "connection")
	}
	if input.Address != nil {
		address, err := s.resolveAddress(ctx, input.Address)
		if err != nil {
			return nil, err
		}
		deployment.AddressID = address.ID
		deployment.Address = address
		changed = append(changed, "address")
	}
	if input.LPTAddress != nil {
		lptAddress, err := s.resolveAddress(ctx, input.LPTAddress)
		if err != nil {
			return nil, err
		}
		deployment.LPTAddressID = &lptAddress.ID
		deployment.LPTAddress = lptAddress
		changed = append(changed, "lptAddress")
	}
	if input.Scheduled.Present {
		scheduled, err := parseScheduled(input.Scheduled.Value)
		if err != nil {
			return nil, err
		}
		deployment.Scheduled = scheduled
		changed = append(changed, "scheduled")
	}
	if input.Annotation.Present {
		deployment.Annotation = input.Annotation.Value
		changed = append(changed, "annotation")
	}
	if input.Testing != nil {
		deployment.Testing = *input.Testing
		changed = append(changed, "testing")
	}

	if err := s.deployments.Update(ctx, deployment); err != nil {
		return nil, notFoundOnNoRows(err, "deployment")
	}

	s.publish(ctx, events.Event{
		Type:      events.EventDeploymentPatched,
		AccountID: &account.ID,
		Payload: events.DeploymentPatchedPayload{
			DeploymentID:  deployment.ID,
			ChangedFields: changed,
		},
	})
	return deployment, nil
}

// Delete removes a deployment in scope, unless hardware is installed and
// the caller is not root.
func (s *DeploymentService) Delete(ctx context.Context, account *domain.Account, id int64) error {
	role, err := s.resolver.Resolve(ctx, account)
	if err != nil {
		return util.MapError(err)
	}
	deployment, err := s.deployments.GetByID(ctx, id, role.Scope())
	if err != nil {
		return notFoundOnNoRows(err, "deployment")
	}
	if err := authz.CanModify(account, deployment.Systems); err != nil {
		return err
	}

	if err := s.deployments.Delete(ctx, deployment.ID); err != nil {
		return notFoundOnNoRows(err, "deployment")
	}

	s.publish(ctx, events.Event{
		Type:      events.EventDeploymentDeleted,
		AccountID: &account.ID,
		Payload: events.DeploymentDeletedPayload{
			DeploymentID: deployment.ID,
			CustomerID:   deployment.CustomerID,
		},
	})
	return nil
}

// targetCustomer resolves the customer a new deployment belongs to. Absent
// customer means the account's own; customers outside the resolved scope
// are reported as not found.
func (s *DeploymentService) targetCustomer(ctx context.Context, account *domain.Account, role authz.Role, requested *int64) (int64, error) {
	customerID := account.CustomerID
	if requested != nil {
		customerID = *requested
	}
	if !role.CanAccessCustomer(customerID) {
		return 0, util.NewNotFound("customer", nil)
	}
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return 0, notFoundOnNoRows(err, "customer")
	}
	return customerID, nil
}

func (s *DeploymentService) resolveAddress(ctx context.Context, input *AddressInput) (*domain.Address, error) {
	if input.Street == "" {
		return nil, util.NewMissingField("street")
	}
	if input.HouseNumber == "" {
		return nil, util.NewMissingField("house number")
	}
	if input.ZipCode == "" {
		return nil, util.NewMissingField("ZIP code")
	}
	if input.City == "" {
		return nil, util.NewMissingField("city")
	}

	address := &domain.Address{
		Street:      input.Street,
		HouseNumber: input.HouseNumber,
		ZipCode:     input.ZipCode,
		City:        input.City,
		State:       input.State,
	}
	if err := s.addresses.AddOrGet(ctx, address); err != nil {
		return nil, util.MapError(err)
	}
	return address, nil
}

func (s *DeploymentService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, event)
}

// Offset-less timestamps and bare dates are accepted alongside RFC3339;
// clients schedule in wall-clock time without a zone.
var scheduledLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseScheduled(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	for _, layout := range scheduledLayouts {
		if parsed, err := time.Parse(layout, *raw); err == nil {
			return &parsed, nil
		}
	}
	return nil, util.NewValidationError("invalid scheduled timestamp", map[string]any{"scheduled": *raw})
}
