package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/questforge/treasury/internal/adapters/cache"
	"github.com/questforge/treasury/internal/adapters/database/sqlite"
	"github.com/questforge/treasury/internal/core/domain"
	"github.com/questforge/treasury/internal/core/services"
	"github.com/questforge/treasury/internal/handlers"
	"github.com/questforge/treasury/internal/platform/config"
	"github.com/questforge/treasury/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

func signToken(t *testing.T, subject string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

// newTestRouter wires the full stack over a throwaway SQLite file.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, repo.Close())
	})

	attrCache := cache.NewAttributeCache()
	currencyRegistry := services.NewCurrencyRegistry(attrCache, nil)
	require.NoError(t, currencyRegistry.Register(
		domain.NewCurrency("coins", "Coins", "coin", "coins", "$", "", 2, 100, "primary")))

	container := services.NewServiceContainer(repo, attrCache, currencyRegistry, true)

	table := registry.New()
	table.Register(services.EconomyServiceCategory, services.TreasuryOwnerID, container.Economy, registry.PriorityNormal)

	r := gin.New()
	handlers.RegisterRoutes(r, &config.Config{JWTSecret: testJWTSecret}, container, table)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var payload *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewBuffer(raw)
	} else {
		payload = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, path, payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpointIsPublic(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(t, r, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIRequiresToken(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/v1/currencies", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/v1/currencies", nil, signToken(t, "operator"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateAccountLifecycle(t *testing.T) {
	r := newTestRouter(t)
	token := signToken(t, "operator")
	id := uuid.New().String()

	w := doRequest(t, r, http.MethodPost, "/api/v1/accounts",
		gin.H{"uuid": id, "displayName": "Alice"}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	// Creating the same account again conflicts.
	w = doRequest(t, r, http.MethodPost, "/api/v1/accounts",
		gin.H{"uuid": id, "displayName": "Alice"}, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/v1/accounts/"+id, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var account map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &account))
	assert.Equal(t, "Alice", account["displayName"])

	// The account was seeded with the currency's starting balance.
	w = doRequest(t, r, http.MethodGet, "/api/v1/accounts/"+id+"/balance?currency=coins", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var balance map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &balance))
	assert.Equal(t, 100.0, balance["balance"])
}

func TestGetAccount_NotFound(t *testing.T) {
	r := newTestRouter(t)
	token := signToken(t, "operator")

	w := doRequest(t, r, http.MethodGet, "/api/v1/accounts/"+uuid.New().String(), nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/v1/accounts/not-a-uuid", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDepositWithdrawResults(t *testing.T) {
	r := newTestRouter(t)
	token := signToken(t, "operator")
	id := uuid.New().String()

	// Deposits auto-create the account; results come back as HTTP 200 with a
	// kind field rather than as transport errors.
	w := doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/deposit", id),
		gin.H{"currencyId": "coins", "amount": 25}, token)
	require.Equal(t, http.StatusOK, w.Code)
	var result domain.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, domain.ResultSuccess, result.Kind)
	assert.Equal(t, 125.0, result.Balance)

	w = doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/withdraw", id),
		gin.H{"currencyId": "coins", "amount": 1000}, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, domain.ResultFailure, result.Kind)
	assert.Equal(t, "Insufficient funds! You have $125.00", result.Message)
}

func TestTransferBetweenAccounts(t *testing.T) {
	r := newTestRouter(t)
	token := signToken(t, "operator")
	alice := uuid.New().String()
	bob := uuid.New().String()

	w := doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/deposit", alice),
		gin.H{"currencyId": "coins", "amount": 50}, token)
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/deposit", bob),
		gin.H{"currencyId": "coins", "amount": 1}, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodPost, "/api/v1/transfers",
		gin.H{"from": alice, "to": bob, "currencyId": "coins", "amount": 40}, token)
	require.Equal(t, http.StatusOK, w.Code)
	var result domain.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Equal(t, domain.ResultSuccess, result.Kind)
	assert.Equal(t, 141.0, result.Balance)

	w = doRequest(t, r, http.MethodGet, "/api/v1/accounts/"+alice+"/balance?currency=coins", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var balance map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &balance))
	assert.Equal(t, 110.0, balance["balance"])
}

func TestCurrencyEndpoints(t *testing.T) {
	r := newTestRouter(t)
	token := signToken(t, "operator")

	w := doRequest(t, r, http.MethodGet, "/api/v1/currencies", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/v1/currencies/coins", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var currency map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &currency))
	assert.Equal(t, "coins", currency["id"])

	w = doRequest(t, r, http.MethodGet, "/api/v1/currencies/missing", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
