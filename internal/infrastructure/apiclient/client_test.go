package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/config"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/logger"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/metrics"
)

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	c, err := NewClient(config.APIConfig{
		BaseURL:       baseURL,
		Timeout:       5 * time.Second,
		UserAgent:     "retailctl-test",
		TrailingSlash: true,
	}, opts...)
	require.NoError(t, err)
	return c
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(config.APIConfig{})
	assert.Error(t, err)

	_, err = NewClient(config.APIConfig{BaseURL: "not a url"})
	assert.Error(t, err)

	c, err := NewClient(config.APIConfig{BaseURL: "http://localhost:8000/api"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/api/", c.BaseURL())
}

func TestResolveURL(t *testing.T) {
	c := newTestClient(t, "https://retailm.example.com/api/")

	tests := []struct {
		name     string
		path     string
		query    map[string]string
		expected string
	}{
		{"collection", "products/", nil, "https://retailm.example.com/api/products/"},
		{"leading slash stays under prefix", "/branches/", nil, "https://retailm.example.com/api/branches/"},
		{"parent path with query", "../admin/api/customuser/?role__exact=admin", nil, "https://retailm.example.com/admin/api/customuser/?role__exact=admin"},
		{"extra query", "sales/", map[string]string{"page": "2"}, "https://retailm.example.com/api/sales/?page=2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := c.ResolveURL(tt.path, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, u.String())
		})
	}
}

func TestItemPath(t *testing.T) {
	c := newTestClient(t, "http://localhost/api/")
	assert.Equal(t, "products/7/", c.ItemPath("products/", "7"))
	assert.Equal(t, "ledger-entries/12/", c.ItemPath("ledger-entries", "12"))

	noSlash, err := NewClient(config.APIConfig{BaseURL: "http://localhost/api/"})
	require.NoError(t, err)
	assert.Equal(t, "products/7", noSlash.ItemPath("products/", "7"))
}

func TestDo_SendsHeadersAndBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "retailctl-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "Bearer a1", r.Header.Get("Authorization"))
		assert.Equal(t, "req-42", r.Header.Get(logger.RequestIDHeader))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Rice", body["name"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 1, "name": "Rice"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL+"/api/")
	ctx := context.WithValue(context.Background(), logger.RequestIDKey, "req-42")

	resp, err := c.Post(ctx, "products/", "a1", map[string]string{"name": "Rice"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, DecodeJSON(resp, &out))
	assert.Equal(t, 1, out.ID)
}

func TestDo_GeneratesRequestIDAndOmitsEmptyToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get(logger.RequestIDHeader))
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	resp, err := c.Delete(context.Background(), "products/1/", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.NoError(t, DecodeJSON(resp, &struct{}{}))
}

func TestDo_TokenInvalidResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "Given token not valid for any token type", "code": "token_not_valid", "messages": [{"token_class": "AccessToken"}]}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	resp, err := c.Get(context.Background(), "branches/", "expired")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.True(t, IsTokenInvalid(err))
	assert.Equal(t, "Given token not valid for any token type", err.Error())
}

func TestDo_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := newTestClient(t, url)
	_, err := c.Get(context.Background(), "products/", "a1")
	require.Error(t, err)

	var te *TransportError
	assert.True(t, errors.As(err, &te))
	assert.False(t, IsTokenInvalid(err))
}

func TestDo_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Get(ctx, "products/", "a1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestDo_RecordsMetricsAndSpans(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail": "Not found."}`))
	}))
	defer server.Close()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	m := metrics.NewRecorder()

	c := newTestClient(t, server.URL, WithMetrics(m), WithTracerProvider(tp))
	_, err := c.Get(context.Background(), "vendors/9/", "a1")

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.NotFound())

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "HTTP GET", spans[0].Name())

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestSetHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "main", r.Header.Get("X-Branch"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	c.SetHeader("X-Branch", "main")
	_, err := c.Get(context.Background(), "products/", "")
	require.NoError(t, err)
}
