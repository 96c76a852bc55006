package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"capristore/internal/backend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newClient(t *testing.T, handler http.HandlerFunc) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return backend.NewClient(backend.Config{BaseURL: srv.URL + "/"}, zap.NewNop())
}

func TestClient_DoSendsJSONAndToken(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders", r.URL.Path)
		assert.Equal(t, "yes", r.URL.Query().Get("dry"))
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "CASH", in["paymentMethod"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"orderNumber":"ORD-000001"}`))
	})

	ctx := backend.WithToken(context.Background(), "tok-123")
	var out struct {
		OrderNumber string `json:"orderNumber"`
	}
	err := client.Do(ctx, http.MethodPost, "/api/orders", url.Values{"dry": {"yes"}}, map[string]string{"paymentMethod": "CASH"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "ORD-000001", out.OrderNumber)
}

func TestClient_DoOmitsAuthorizationWithoutToken(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.Do(context.Background(), http.MethodDelete, "/api/products/1", nil, nil, nil)
	assert.NoError(t, err)
}

func TestClient_DoUsesBackendErrorMessage(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Stock insuficiente"}`))
	})

	err := client.Do(context.Background(), http.MethodPost, "/api/orders", nil, map[string]int{"a": 1}, nil)

	var apiErr *backend.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Stock insuficiente", apiErr.Message)
}

func TestClient_DoFallsBackToMessageField(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"El email ya está registrado"}`))
	})

	err := client.Do(context.Background(), http.MethodPost, "/api/auth/register", nil, nil, nil)

	var apiErr *backend.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "El email ya está registrado", apiErr.Message)
}

func TestClient_DoMapsNonJSONStatuses(t *testing.T) {
	cases := map[int]string{
		http.StatusNotFound:            "service not found",
		http.StatusInternalServerError: "server error",
		http.StatusUnauthorized:        "invalid credentials",
		http.StatusForbidden:           "access denied",
		http.StatusTeapot:              "error 418",
	}
	for status, want := range cases {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(status)
			_, _ = w.Write([]byte("<html>oops</html>"))
		})

		err := client.Do(context.Background(), http.MethodGet, "/x", nil, nil, nil)

		var apiErr *backend.APIError
		require.True(t, errors.As(err, &apiErr), "status %d", status)
		assert.Contains(t, apiErr.Message, want)
	}
}

func TestClient_DoReportsUnavailableBackend(t *testing.T) {
	client := backend.NewClient(backend.Config{BaseURL: "http://127.0.0.1:1"}, zap.NewNop())

	err := client.Do(context.Background(), http.MethodGet, "/api/products", nil, nil, nil)
	assert.True(t, errors.Is(err, backend.ErrUnavailable))
}

func TestClient_GetAbsolute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1},{"id":2}]`))
	}))
	defer srv.Close()

	client := backend.NewClient(backend.Config{BaseURL: "http://unused"}, zap.NewNop())
	var out []map[string]any
	require.NoError(t, client.GetAbsolute(context.Background(), srv.URL+"/products", &out))
	assert.Len(t, out, 2)
}
