package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"capristore/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := &config.Config{
		AppPort:     ":0",
		Environment: "development",
		LogLevel:    "error",
		JWTSecret:   "test_jwt_secret",
		Backend: config.BackendConfig{
			Timeout:         time.Second,
			ExternalFeedTTL: time.Minute,
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			DSN:    "file::memory:",
		},
		Cart: config.CartConfig{
			SessionTTL:    time.Hour,
			SweepInterval: time.Minute,
		},
		LowStockThreshold: 10,
		DevAdminEmail:     "admin@test.local",
		DevAdminPassword:  "admin123",
	}

	app, err := NewApp(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Shutdown() })
	return app
}

func call(t *testing.T, app *App, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Fiber.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, respBody
}

func login(t *testing.T, app *App, email, password string) string {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, string(body))

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func registerCustomer(t *testing.T, app *App, email string) string {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"fullName": "Ana Pérez",
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	return login(t, app, email, "secret123")
}

func TestServerHealthCheck(t *testing.T) {
	app := newTestApp(t)

	status, body := call(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)

	var health map[string]any
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "healthy", health["status"])
	checks := health["checks"].(map[string]any)
	assert.Equal(t, "connected", checks["database"])
	assert.Equal(t, "disabled", checks["rabbitmq"])
	assert.Equal(t, "disabled", checks["redis"])
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)

	status, _ := call(t, app, http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, status)

	status, body := call(t, app, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "http_requests_total")
	assert.Contains(t, string(body), `route="/api/v1/products`)
}

func TestCheckoutFlow(t *testing.T) {
	app := newTestApp(t)
	token := registerCustomer(t, app, "ana@example.com")

	status, body := call(t, app, http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, status)
	var products []struct {
		ID    int64 `json:"id"`
		Stock int   `json:"stock"`
	}
	require.NoError(t, json.Unmarshal(body, &products))
	require.NotEmpty(t, products)
	product := products[0]

	status, body = call(t, app, http.MethodPost, "/api/v1/cart/items", token, map[string]any{
		"productId": product.ID,
		"quantity":  2,
	})
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = call(t, app, http.MethodPost, "/api/v1/checkout", token, map[string]string{
		"paymentMethod":   "TRANSFER",
		"deliveryPhone":   "3001234567",
		"deliveryAddress": "Vereda El Salitre, finca 4",
		"deliveryCity":    "Tunja",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	var confirmation struct {
		Order struct {
			OrderNumber  string `json:"orderNumber"`
			DeliveryName string `json:"deliveryName"`
		} `json:"order"`
		Receipt struct {
			TotalItems int `json:"totalItems"`
		} `json:"receipt"`
	}
	require.NoError(t, json.Unmarshal(body, &confirmation))
	assert.Equal(t, "ORD-000001", confirmation.Order.OrderNumber)
	assert.Equal(t, "Ana Pérez", confirmation.Order.DeliveryName)
	assert.Equal(t, 2, confirmation.Receipt.TotalItems)

	status, body = call(t, app, http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, status)
	var summary struct {
		TotalItems int `json:"totalItems"`
	}
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Equal(t, 0, summary.TotalItems)

	status, _ = call(t, app, http.MethodGet, "/api/v1/checkout/receipts/ORD-000001", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = call(t, app, http.MethodGet, "/api/v1/orders/mine", token, nil)
	require.Equal(t, http.StatusOK, status)
	var orders []map[string]any
	require.NoError(t, json.Unmarshal(body, &orders))
	assert.Len(t, orders, 1)

	var after struct {
		Stock int `json:"stock"`
	}
	status, body = call(t, app, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", product.ID), "", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &after))
	assert.Equal(t, product.Stock-2, after.Stock)
}

func TestCheckoutWithEmptyCart(t *testing.T) {
	app := newTestApp(t)
	token := registerCustomer(t, app, "luis@example.com")

	status, body := call(t, app, http.MethodPost, "/api/v1/checkout", token, map[string]string{
		"deliveryPhone":   "3001234567",
		"deliveryAddress": "Calle 1",
		"deliveryCity":    "Tunja",
	})
	assert.Equal(t, http.StatusBadRequest, status, string(body))
}

func TestProtectedRoutes(t *testing.T) {
	app := newTestApp(t)

	status, _ := call(t, app, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, app, http.MethodGet, "/api/v1/cart", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	customer := registerCustomer(t, app, "eva@example.com")
	status, _ = call(t, app, http.MethodGet, "/api/v1/admin/dashboard", customer, nil)
	assert.Equal(t, http.StatusForbidden, status)

	admin := login(t, app, "admin@test.local", "admin123")
	status, _ = call(t, app, http.MethodGet, "/api/v1/admin/dashboard", admin, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, app, http.MethodGet, "/api/v1/orders/statuses", "", nil)
	assert.Equal(t, http.StatusOK, status)
}
