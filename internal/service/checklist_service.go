package service

import (
	"context"
	"encoding/json"

	"github.com/fieldops/deployment-service/internal/authz"
	"github.com/fieldops/deployment-service/internal/domain"
	"github.com/fieldops/deployment-service/internal/events"
	"github.com/fieldops/deployment-service/internal/repository"
	"github.com/fieldops/deployment-service/pkg/util"
)

// ChecklistService manages the installation checklist on deployments. All
// operations require deployment-admin rights (root or an Admin row).
type ChecklistService struct {
	deployments repository.DeploymentRepository
	resolver    *authz.Resolver
	dispatcher  events.Dispatcher
}

// NewChecklistService constructs the service.
func NewChecklistService(deployments repository.DeploymentRepository, resolver *authz.Resolver, dispatcher events.Dispatcher) *ChecklistService {
	return &ChecklistService{deployments: deployments, resolver: resolver, dispatcher: dispatcher}
}

// UpdateTechnicianAnnotation overwrites the structured annotation blob.
func (s *ChecklistService) UpdateTechnicianAnnotation(ctx context.Context, account *domain.Account, id int64, annotation json.RawMessage) error {
	deployment, err := s.adminDeployment(ctx, account, id)
	if err != nil {
		return err
	}
	if err := s.deployments.SetTechnicianAnnotation(ctx, deployment.ID, annotation); err != nil {
		return notFoundOnNoRows(err, "deployment")
	}
	s.publishUpdate(ctx, account, deployment.ID, "technician_annotation", true)
	return nil
}

// SetFlag sets or clears one checklist step. A set step records the current
// time as its completed-at timestamp.
func (s *ChecklistService) SetFlag(ctx context.Context, account *domain.Account, id int64, flag domain.ChecklistFlag, done bool) error {
	deployment, err := s.adminDeployment(ctx, account, id)
	if err != nil {
		return err
	}
	if err := s.deployments.SetChecklistFlag(ctx, deployment.ID, flag, done); err != nil {
		return notFoundOnNoRows(err, "deployment")
	}
	s.publishUpdate(ctx, account, deployment.ID, string(flag), done)
	return nil
}

// adminDeployment enforces the admin gate and loads the deployment within
// the caller's scope.
func (s *ChecklistService) adminDeployment(ctx context.Context, account *domain.Account, id int64) (*domain.Deployment, error) {
	admin, err := s.resolver.IsAdmin(ctx, account)
	if err != nil {
		return nil, util.MapError(err)
	}
	if !admin {
		return nil, util.NewForbidden("deployment admin required")
	}

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

func (s *ChecklistService) publishUpdate(ctx context.Context, account *domain.Account, deploymentID int64, step string, done bool) {
	if s.dispatcher == nil {
		return
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventChecklistUpdated,
		AccountID: &account.ID,
		Payload: events.ChecklistUpdatedPayload{
			DeploymentID: deploymentID,
			Step:         step,
			Done:         done,
		},
	})
}
