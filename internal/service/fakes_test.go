package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fieldops/deployment-service/internal/authz"
	"github.com/fieldops/deployment-service/internal/domain"
	"github.com/fieldops/deployment-service/internal/events"
)

func scopeCovers(scope authz.Scope, customerID int64) bool {
	if scope.All {
		return true
	}
	for _, id := range scope.CustomerIDs {
		if id == customerID {
			return true
		}
	}
	return false
}

type fakeDeploymentRepo struct {
	mu          sync.Mutex
	nextID      int64
	deployments map[int64]*domain.Deployment
}

func newFakeDeploymentRepo() *fakeDeploymentRepo {
	return &fakeDeploymentRepo{deployments: make(map[int64]*domain.Deployment)}
}

func (f *fakeDeploymentRepo) Create(_ context.Context, deployment *domain.Deployment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	deployment.ID = f.nextID
	deployment.CreatedAt = time.Now()
	deployment.UpdatedAt = deployment.CreatedAt
	clone := *deployment
	f.deployments[deployment.ID] = &clone
	return nil
}

func (f *fakeDeploymentRepo) Update(_ context.Context, deployment *domain.Deployment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.deployments[deployment.ID]; !ok {
		return pgx.ErrNoRows
	}
	deployment.UpdatedAt = time.Now()
	clone := *deployment
	f.deployments[deployment.ID] = &clone
	return nil
}

func (f *fakeDeploymentRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.deployments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.deployments, id)
	return nil
}

func (f *fakeDeploymentRepo) GetByID(_ context.Context, id int64, scope authz.Scope) (*domain.Deployment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	deployment, ok := f.deployments[id]
	if !ok || !scopeCovers(scope, deployment.CustomerID) {
		return nil, pgx.ErrNoRows
	}
	clone := *deployment
	return &clone, nil
}

func (f *fakeDeploymentRepo) List(_ context.Context, scope authz.Scope) ([]domain.Deployment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Deployment
	for _, deployment := range f.deployments {
		if scopeCovers(scope, deployment.CustomerID) {
			result = append(result, *deployment)
		}
	}
	return result, nil
}

func (f *fakeDeploymentRepo) SystemIDs(_ context.Context, deploymentID int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	deployment, ok := f.deployments[deploymentID]
	if !ok {
		return nil, nil
	}
	return deployment.Systems, nil
}

func (f *fakeDeploymentRepo) SetTechnicianAnnotation(_ context.Context, id int64, annotation json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	deployment, ok := f.deployments[id]
	if !ok {
		return pgx.ErrNoRows
	}
	deployment.TechnicianAnnotation = annotation
	return nil
}

func (f *fakeDeploymentRepo) SetChecklistFlag(_ context.Context, id int64, flag domain.ChecklistFlag, done bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	deployment, ok := f.deployments[id]
	if !ok {
		return pgx.ErrNoRows
	}
	var stamp *time.Time
	if done {
		now := time.Now()
		stamp = &now
	}
	switch flag {
	case domain.ChecklistConstructionSitePreparation:
		deployment.ConstructionSitePreparationFeedback = stamp
	case domain.ChecklistInternetConnection:
		deployment.InternetConnection = stamp
	case domain.ChecklistHardwareInstallation:
		deployment.HardwareInstallation = stamp
	}
	return nil
}

type fakeAddressRepo struct {
	mu        sync.Mutex
	nextID    int64
	addresses []*domain.Address
}

func newFakeAddressRepo() *fakeAddressRepo {
	return &fakeAddressRepo{}
}

func (f *fakeAddressRepo) AddOrGet(_ context.Context, address *domain.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.addresses {
		if existing.SameLocation(*address) {
			address.ID = existing.ID
			return nil
		}
	}
	f.nextID++
	address.ID = f.nextID
	clone := *address
	f.addresses = append(f.addresses, &clone)
	return nil
}

func (f *fakeAddressRepo) GetByID(_ context.Context, id int64) (*domain.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.addresses {
		if existing.ID == id {
			clone := *existing
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeCustomerRepo struct {
	customers map[int64]*domain.Customer
}

func newFakeCustomerRepo(ids ...int64) *fakeCustomerRepo {
	repo := &fakeCustomerRepo{customers: make(map[int64]*domain.Customer)}
	for _, id := range ids {
		repo.customers[id] = &domain.Customer{ID: id, Company: "Customer"}
	}
	return repo
}

func (f *fakeCustomerRepo) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	customer, ok := f.customers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return customer, nil
}

func (f *fakeCustomerRepo) List(_ context.Context, scope authz.Scope) ([]domain.Customer, error) {
	var result []domain.Customer
	for _, customer := range f.customers {
		if scopeCovers(scope, customer.ID) {
			result = append(result, *customer)
		}
	}
	return result, nil
}

type fakeStagedRepo struct {
	mu     sync.Mutex
	staged map[string]*domain.StagedDeployment
}

func newFakeStagedRepo() *fakeStagedRepo {
	return &fakeStagedRepo{staged: make(map[string]*domain.StagedDeployment)}
}

func (f *fakeStagedRepo) Create(_ context.Context, staged *domain.StagedDeployment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	staged.CreatedAt = time.Now()
	clone := *staged
	f.staged[staged.ID] = &clone
	return nil
}

func (f *fakeStagedRepo) GetByID(_ context.Context, id string) (*domain.StagedDeployment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	staged, ok := f.staged[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *staged
	return &clone, nil
}

func (f *fakeStagedRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.staged[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.staged, id)
	return nil
}

type fakeAdminStore struct {
	admins    map[int64]bool
	delegated map[int64][]int64
}

func (f *fakeAdminStore) IsAdmin(_ context.Context, accountID int64) (bool, error) {
	return f.admins[accountID], nil
}

func (f *fakeAdminStore) AdministeredCustomerIDs(_ context.Context, accountID int64) ([]int64, error) {
	return f.delegated[accountID], nil
}

// captureDispatcher records published events for assertions.
type captureDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *captureDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *captureDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *captureDispatcher) published(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}
