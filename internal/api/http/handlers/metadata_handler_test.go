package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/deployment-service/internal/domain"
)

func TestCustomersScopedToCaller(t *testing.T) {
	env := newTestEnv(t)
	token := env.addAccount(t, 1, 10, false)
	env.customers.customers[20] = &domain.Customer{ID: 20, Company: "Other"}

	resp, body := env.request(t, http.MethodGet, "/customers", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, float64(10), data[0].(map[string]any)["id"])
}

func TestCustomersForDelegatedAdmin(t *testing.T) {
	env := newTestEnv(t)
	token := env.addAccount(t, 1, 10, false)
	env.customers.customers[20] = &domain.Customer{ID: 20, Company: "Other"}
	env.admins.admins[1] = true
	env.admins.delegated[1] = []int64{20}

	resp, body := env.request(t, http.MethodGet, "/customers", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"], 2)
}

func TestDeploymentsListingIncludesCustomer(t *testing.T) {
	env := newTestEnv(t)
	token := env.addAccount(t, 1, 10, false)

	resp, _ := env.request(t, http.MethodPost, "/", token, validDeploymentBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	env.deployments.rows[1].Customer = &domain.Customer{ID: 10, Company: "Customer"}

	resp, body := env.request(t, http.MethodGet, "/deployments", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].([]any)
	require.Len(t, data, 1)
	item := data[0].(map[string]any)
	require.NotNil(t, item["customer"])
	assert.Equal(t, float64(10), item["customer"].(map[string]any)["id"])
	// System ids are not part of this listing.
	assert.Nil(t, item["systems"])
}

func TestHardwareModels(t *testing.T) {
	env := newTestEnv(t)
	token := env.addAccount(t, 1, 10, false)

	resp, body := env.request(t, http.MethodGet, "/hw-models", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, "standard24", data[`Standard 24"`])
	assert.Equal(t, "phoenix", data["Phoenix"])
	assert.Equal(t, "neptun", data["Neptun"])
	assert.Len(t, data, 4)
}

func TestIsAdmin(t *testing.T) {
	env := newTestEnv(t)
	user := env.addAccount(t, 1, 10, false)
	rootToken := env.addAccount(t, 2, 1, true)

	resp, body := env.request(t, http.MethodGet, "/is-admin", user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["data"].(map[string]any)["isAdmin"])

	env.admins.admins[1] = true
	resp, body = env.request(t, http.MethodGet, "/is-admin", user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["data"].(map[string]any)["isAdmin"])

	resp, body = env.request(t, http.MethodGet, "/is-admin", rootToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["data"].(map[string]any)["isAdmin"])
}
