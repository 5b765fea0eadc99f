package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httpapi "github.com/fieldops/deployment-service/internal/api/http"
	"github.com/fieldops/deployment-service/internal/api/http/handlers"
	"github.com/fieldops/deployment-service/internal/auth"
	"github.com/fieldops/deployment-service/internal/authz"
	"github.com/fieldops/deployment-service/internal/confirm"
	"github.com/fieldops/deployment-service/internal/domain"
	"github.com/fieldops/deployment-service/internal/events"
	"github.com/fieldops/deployment-service/internal/observability"
	"github.com/fieldops/deployment-service/internal/persistence"
	"github.com/fieldops/deployment-service/internal/service"
)

// In-memory stand-ins for the Postgres repositories. Scope filtering
// mirrors the SQL WHERE clauses.

func covers(scope authz.Scope, customerID int64) bool {
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

type memAccounts struct {
	accounts map[int64]*domain.Account
}

func (m *memAccounts) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	account, ok := m.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return account, nil
}

type memCustomers struct {
	customers map[int64]*domain.Customer
}

func (m *memCustomers) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	customer, ok := m.customers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return customer, nil
}

func (m *memCustomers) List(_ context.Context, scope authz.Scope) ([]domain.Customer, error) {
	var out []domain.Customer
	for _, customer := range m.customers {
		if covers(scope, customer.ID) {
			out = append(out, *customer)
		}
	}
	return out, nil
}

type memAddresses struct {
	nextID int64
	rows   []*domain.Address
}

func (m *memAddresses) AddOrGet(_ context.Context, address *domain.Address) error {
	for _, row := range m.rows {
		if row.SameLocation(*address) {
			address.ID = row.ID
			return nil
		}
	}
	m.nextID++
	address.ID = m.nextID
	clone := *address
	m.rows = append(m.rows, &clone)
	return nil
}

func (m *memAddresses) GetByID(_ context.Context, id int64) (*domain.Address, error) {
	for _, row := range m.rows {
		if row.ID == id {
			clone := *row
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memDeployments struct {
	nextID int64
	rows   map[int64]*domain.Deployment
}

func (m *memDeployments) Create(_ context.Context, deployment *domain.Deployment) error {
	m.nextID++
	deployment.ID = m.nextID
	deployment.CreatedAt = time.Now()
	deployment.UpdatedAt = deployment.CreatedAt
	clone := *deployment
	m.rows[deployment.ID] = &clone
	return nil
}

func (m *memDeployments) Update(_ context.Context, deployment *domain.Deployment) error {
	if _, ok := m.rows[deployment.ID]; !ok {
		return pgx.ErrNoRows
	}
	deployment.UpdatedAt = time.Now()
	clone := *deployment
	m.rows[deployment.ID] = &clone
	return nil
}

func (m *memDeployments) Delete(_ context.Context, id int64) error {
	if _, ok := m.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.rows, id)
	return nil
}

func (m *memDeployments) GetByID(_ context.Context, id int64, scope authz.Scope) (*domain.Deployment, error) {
	deployment, ok := m.rows[id]
	if !ok || !covers(scope, deployment.CustomerID) {
		return nil, pgx.ErrNoRows
	}
	clone := *deployment
	return &clone, nil
}

func (m *memDeployments) List(_ context.Context, scope authz.Scope) ([]domain.Deployment, error) {
	var out []domain.Deployment
	for _, deployment := range m.rows {
		if covers(scope, deployment.CustomerID) {
			out = append(out, *deployment)
		}
	}
	return out, nil
}

func (m *memDeployments) SystemIDs(_ context.Context, deploymentID int64) ([]int64, error) {
	deployment, ok := m.rows[deploymentID]
	if !ok {
		return nil, nil
	}
	return deployment.Systems, nil
}

func (m *memDeployments) SetTechnicianAnnotation(_ context.Context, id int64, annotation json.RawMessage) error {
	deployment, ok := m.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	deployment.TechnicianAnnotation = annotation
	return nil
}

func (m *memDeployments) SetChecklistFlag(_ context.Context, id int64, flag domain.ChecklistFlag, done bool) error {
	deployment, ok := m.rows[id]
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

type memStaged struct {
	rows map[string]*domain.StagedDeployment
}

func (m *memStaged) Create(_ context.Context, staged *domain.StagedDeployment) error {
	staged.CreatedAt = time.Now()
	clone := *staged
	m.rows[staged.ID] = &clone
	return nil
}

func (m *memStaged) GetByID(_ context.Context, id string) (*domain.StagedDeployment, error) {
	staged, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *staged
	return &clone, nil
}

func (m *memStaged) Delete(_ context.Context, id string) error {
	if _, ok := m.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.rows, id)
	return nil
}

type memAdmins struct {
	admins    map[int64]bool
	delegated map[int64][]int64
}

func (m *memAdmins) IsAdmin(_ context.Context, accountID int64) (bool, error) {
	return m.admins[accountID], nil
}

func (m *memAdmins) AdministeredCustomerIDs(_ context.Context, accountID int64) ([]int64, error) {
	return m.delegated[accountID], nil
}

// testEnv runs the full HTTP stack against in-memory stores.
type testEnv struct {
	app         *fiber.App
	tokens      *auth.TokenManager
	accounts    *memAccounts
	customers   *memCustomers
	deployments *memDeployments
	admins      *memAdmins
	dispatcher  events.Dispatcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	accounts := &memAccounts{accounts: map[int64]*domain.Account{}}
	customers := &memCustomers{customers: map[int64]*domain.Customer{}}
	addresses := &memAddresses{}
	deployments := &memDeployments{rows: map[int64]*domain.Deployment{}}
	staged := &memStaged{rows: map[string]*domain.StagedDeployment{}}
	admins := &memAdmins{admins: map[int64]bool{}, delegated: map[int64][]int64{}}

	logger := zap.NewNop()
	resolver := authz.NewResolver(admins, nil, 0, logger)
	dispatcher := events.NewInMemoryDispatcher()

	codec, err := confirm.NewCodec("test-passphrase", 100)
	require.NoError(t, err)

	deploymentService := service.NewDeploymentService(service.DeploymentDependencies{
		DeploymentRepo: deployments,
		AddressRepo:    addresses,
		CustomerRepo:   customers,
		Resolver:       resolver,
		Dispatcher:     dispatcher,
	})
	checklistService := service.NewChecklistService(deployments, resolver, dispatcher)
	metadataService := service.NewMetadataService(customers, deployments, resolver)
	confirmationService := service.NewConfirmationService(service.ConfirmationDependencies{
		StagedRepo:     staged,
		DeploymentRepo: deployments,
		AddressRepo:    addresses,
		CustomerRepo:   customers,
		Resolver:       resolver,
		Codec:          codec,
		Dispatcher:     dispatcher,
		PublicBaseURL:  "http://localhost:8080",
	})

	tokens := auth.NewTokenManager("test-secret", 60)
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	app := fiber.New(fiber.Config{
		ErrorHandler: httpapi.NewErrorHandler(logger, metrics),
	})
	httpapi.RegisterRoutes(app, httpapi.RouterDependencies{
		AuthMiddleware: auth.NewAuthMiddleware(tokens, accounts),
		Deployments:    handlers.NewDeploymentsHandler(deploymentService),
		Checklist:      handlers.NewChecklistHandler(checklistService),
		Metadata:       handlers.NewMetadataHandler(metadataService),
		Confirm:        handlers.NewConfirmHandler(confirmationService),
		Health:         handlers.NewHealthHandler(&persistence.Postgres{}, &persistence.Redis{}, "test"),
		Registry:       registry,
	})

	return &testEnv{
		app:         app,
		tokens:      tokens,
		accounts:    accounts,
		customers:   customers,
		deployments: deployments,
		admins:      admins,
		dispatcher:  dispatcher,
	}
}

func (e *testEnv) addAccount(t *testing.T, id, customerID int64, root bool) string {
	t.Helper()
	e.accounts.accounts[id] = &domain.Account{
		ID:         id,
		Name:       fmt.Sprintf("account-%d", id),
		Email:      fmt.Sprintf("account-%d@example.com", id),
		Root:       root,
		CustomerID: customerID,
	}
	if _, ok := e.customers.customers[customerID]; !ok {
		e.customers.customers[customerID] = &domain.Customer{ID: customerID, Company: "Customer"}
	}
	token, _, err := e.tokens.GenerateToken(id)
	require.NoError(t, err)
	return token
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var decoded map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}
