package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDeploymentBody() map[string]any {
	return map[string]any{
		"type":       "kiosk",
		"connection": "lte",
		"address": map[string]any{
			"street":      "Hauptstraße",
			"houseNumber": "1",
			"zipCode":     "10115",
			"city":        "Berlin",
		},
	}
}

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "UNAUTHORIZED", errBody["code"])
}

func TestCreateAndGetDeployment(t *testing.T) {
	env := newTestEnv(t)
	token := env.addAccount(t, 1, 10, false)

	resp, body := env.request(t, http.MethodPost, "/", token, validDeploymentBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := int64(body["data"].(map[string]any)["id"].(float64))
	require.NotZero(t, id)

	resp, body = env.request(t, http.MethodGet, "/1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, "kiosk", data["type"])
	assert.Equal(t, "lte", data["connection"])
	address := data["address"].(map[string]any)
	assert.Equal(t, "Hauptstraße", address["street"])
}

func TestCreateValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	token := env.addAccount(t, 1, 10, false)

	body := validDeploymentBody()
	delete(body, "connection")

	resp, decoded := env.request(t, http.MethodPost, "/", token, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errBody := decoded["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_FAILED", errBody["code"])
	assert.Equal(t, "no connection specified", errBody["message"])
}

func TestGetNonNumericIDIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	token := env.addAccount(t, 1, 10, false)

	resp, _ := env.request(t, http.MethodGet, "/customers-typo", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestForeignDeploymentIsInvisible(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addAccount(t, 1, 10, false)
	foreign := env.addAccount(t, 2, 20, false)

	resp, _ := env.request(t, http.MethodPost, "/", owner, validDeploymentBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = env.request(t, http.MethodGet, "/1", foreign, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := env.request(t, http.MethodGet, "/", foreign, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["data"])
}

func TestPatchPartialUpdate(t *testing.T) {
	env := newTestEnv(t)
	token := env.addAccount(t, 1, 10, false)

	body := validDeploymentBody()
	body["annotation"] = "keep me"
	body["scheduled"] = "2026-03-01T09:30:00Z"
	resp, _ := env.request(t, http.MethodPost, "/", token, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Only type travels; annotation and scheduled stay untouched.
	resp, decoded := env.request(t, http.MethodPatch, "/1", token, map[string]any{"type": "display"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decoded["data"].(map[string]any)
	assert.Equal(t, "display", data["type"])
	assert.Equal(t, "keep me", data["annotation"])
	assert.NotNil(t, data["scheduled"])

	// An explicit null clears scheduled.
	resp, decoded = env.request(t, http.MethodPatch, "/1", token, map[string]any{"scheduled": nil})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data = decoded["data"].(map[string]any)
	assert.Nil(t, data["scheduled"])
	assert.Equal(t, "keep me", data["annotation"])
}

func TestDeleteBlockedWhileSystemsDeployed(t *testing.T) {
	env := newTestEnv(t)
	token := env.addAccount(t, 1, 10, false)

	resp, _ := env.request(t, http.MethodPost, "/", token, validDeploymentBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	env.deployments.rows[1].Systems = []int64{101, 102}

	resp, decoded := env.request(t, http.MethodDelete, "/1", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	errBody := decoded["error"].(map[string]any)
	assert.Equal(t, "SYSTEMS_DEPLOYED", errBody["code"])
	systems := errBody["details"].(map[string]any)["systems"].([]any)
	assert.Len(t, systems, 2)

	// Root may still delete.
	rootToken := env.addAccount(t, 2, 1, true)
	resp, _ = env.request(t, http.MethodDelete, "/1", rootToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDeleteThenGetIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	token := env.addAccount(t, 1, 10, false)

	resp, _ := env.request(t, http.MethodPost, "/", token, validDeploymentBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, decoded := env.request(t, http.MethodDelete, "/1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "deployment deleted", decoded["message"])

	resp, _ = env.request(t, http.MethodGet, "/1", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAllRequiresRoot(t *testing.T) {
	env := newTestEnv(t)
	token := env.addAccount(t, 1, 10, false)

	resp, _ := env.request(t, http.MethodGet, "/all", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAllGroupsByCustomer(t *testing.T) {
	env := newTestEnv(t)
	first := env.addAccount(t, 1, 10, false)
	second := env.addAccount(t, 2, 20, false)
	rootToken := env.addAccount(t, 3, 1, true)

	resp, _ := env.request(t, http.MethodPost, "/", first, validDeploymentBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = env.request(t, http.MethodPost, "/", second, validDeploymentBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, decoded := env.request(t, http.MethodGet, "/all", rootToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decoded["data"].(map[string]any)
	assert.Len(t, data["10"], 1)
	assert.Len(t, data["20"], 1)
}
