package service

import (
	"context"

	"github.com/fieldops/deployment-service/internal/authz"
	"github.com/fieldops/deployment-service/internal/domain"
	"github.com/fieldops/deployment-service/internal/repository"
	"github.com/fieldops/deployment-service/pkg/util"
)

// MetadataService serves the auxiliary listings used by clients to render
// deployment forms.
type MetadataService struct {
	customers   repository.CustomerRepository
	deployments repository.DeploymentRepository
	resolver    *authz.Resolver
}

// NewMetadataService constructs the service.
func NewMetadataService(customers repository.CustomerRepository, deployments repository.DeploymentRepository, resolver *authz.Resolver) *MetadataService {
	return &MetadataService{customers: customers, deployments: deployments, resolver: resolver}
}

// ListCustomers returns the customers within the caller's resolved scope.
func (s *MetadataService) ListCustomers(ctx context.Context, account *domain.Account) ([]domain.Customer, error) {
	role, err := s.resolver.Resolve(ctx, account)
	if err != nil {
		return nil, util.MapError(err)
	}
	customers, err := s.customers.List(ctx, role.Scope())
	if err != nil {
		return nil, util.MapError(err)
	}
	return customers, nil
}

// ListDeployments returns scoped deployments for metadata display.
func (s *MetadataService) ListDeployments(ctx context.Context, account *domain.Account) ([]domain.Deployment, error) {
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

// HardwareModels lists the deployable hardware models.
func (s *MetadataService) HardwareModels() map[string]domain.HardwareModel {
	return domain.HardwareModels()
}

// IsAdmin reports whether the caller holds deployment-admin rights.
func (s *MetadataService) IsAdmin(ctx context.Context, account *domain.Account) (bool, error) {
	admin, err := s.resolver.IsAdmin(ctx, account)
	if err != nil {
		return false, util.MapError(err)
	}
	return admin, nil
}
