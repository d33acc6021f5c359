package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noman2111ni/Retail-Managment-System/internal/apitest"
	"github.com/noman2111ni/Retail-Managment-System/internal/application/report"
	"github.com/noman2111ni/Retail-Managment-System/internal/application/store"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/config"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/metrics"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/tokenstore"
	"github.com/noman2111ni/Retail-Managment-System/internal/interfaces/http/dto"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
}

type gateway struct {
	api     *apitest.Server
	store   *store.Store
	handler http.Handler
	cfg     *config.Config
}

func newGateway(t *testing.T) *gateway {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := apitest.New(t)
	return newGatewayFor(t, api, api.BaseURL())
}

func newGatewayFor(t *testing.T, api *apitest.Server, baseURL string) *gateway {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("RETAIL_API_BASE_URL", baseURL)
	t.Setenv("RETAIL_API_TIMEOUT", "5s")
	t.Setenv("RETAIL_SESSION_BACKEND", "memory")
	cfg, err := config.Load("")
	require.NoError(t, err)

	m := metrics.NewRecorder()
	st, err := store.New(cfg, tokenstore.NewMemoryStore(), zap.NewNop(), m)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	deps := Dependencies{
		Sessions:    st.Users,
		Collections: st,
		Resetter:    st,
		Reports:     report.NewService(st.Products, st.Sales, st.Purchases, time.UTC),
		Metrics:     m,
		Upstream:    cfg.API.BaseURL,
	}
	return &gateway{api: api, store: st, handler: NewEngine(cfg, deps, zap.NewNop()), cfg: cfg}
}

func (g *gateway) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	g.handler.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (g *gateway) login(t *testing.T) {
	t.Helper()
	w, env := g.do(t, http.MethodPost, "/session/login", `{"username":"admin","password":"secret"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.True(t, env.Success)
}

func TestHealthz(t *testing.T) {
	g := newGateway(t)

	w, _ := g.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSession_LoginStatusLogout(t *testing.T) {
	g := newGateway(t)

	_, env := g.do(t, http.MethodGet, "/session", "")
	assert.JSONEq(t, `{"logged_in":false,"has_refresh_token":false,"access_expired":false}`, string(env.Data))

	w, env := g.do(t, http.MethodPost, "/session/login", `{"username":"admin","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)

	w, env = g.do(t, http.MethodPost, "/session/login", `{"username":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)

	w, env = g.do(t, http.MethodPost, "/session/login", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidJSON, env.Error.Code)

	g.login(t)
	_, env = g.do(t, http.MethodGet, "/session", "")
	var status struct {
		LoggedIn bool `json:"logged_in"`
		User     struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.True(t, status.LoggedIn)
	assert.Equal(t, "admin", status.User.Username)

	g.api.Seed("products", apitest.Item{"name": "Rice", "price": "120.00", "quantity": 4})
	w, _ = g.do(t, http.MethodPost, "/resources/products/fetch", "")
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = g.do(t, http.MethodPost, "/session/logout", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, g.store.Session.Current().Access)
	assert.Empty(t, g.store.Products.Snapshot().Data)
}

func TestSession_LoginAsAnotherAccountDropsCachedCollections(t *testing.T) {
	g := newGateway(t)
	g.api.AddUser("bob", "hunter22", "cashier")

	g.login(t)
	g.api.Seed("products", apitest.Item{"name": "Rice", "price": "120.00", "quantity": 4})
	w, _ := g.do(t, http.MethodPost, "/resources/products/fetch", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, g.store.Products.Snapshot().Data, 1)

	w, _ = g.do(t, http.MethodPost, "/session/login", `{"username":"bob","password":"hunter22"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, g.store.Products.Snapshot().Data)
}

func TestSession_Register(t *testing.T) {
	g := newGateway(t)

	w, env := g.do(t, http.MethodPost, "/session/register",
		`{"username":"cashier1","email":"c1@example.com","password":"secret1","role":"cashier"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"username":"cashier1"}`, string(env.Data))

	w, env = g.do(t, http.MethodPost, "/session/register", `{"username":"x","email":"nope","password":"1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)
}

func TestResources_CRUD(t *testing.T) {
	g := newGateway(t)
	g.login(t)

	w, env := g.do(t, http.MethodPost, "/resources/products", `{"name":"Tea","price":"3.50","quantity":2}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Tea", created.Name)
	require.NotZero(t, created.ID)

	w, env = g.do(t, http.MethodGet, "/resources/products", "")
	require.Equal(t, http.StatusOK, w.Code)
	var view struct {
		Resource string `json:"resource"`
		Count    int    `json:"count"`
		Loading  bool   `json:"loading"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "products", view.Resource)
	assert.Equal(t, 1, view.Count)
	assert.False(t, view.Loading)

	path := "/resources/products/" + jsonNumber(created.ID)

	w, env = g.do(t, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"name":"Tea"`)

	w, env = g.do(t, http.MethodPut, path, `{"name":"Green Tea","price":"4.00","quantity":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), `"name":"Green Tea"`)
	assert.Equal(t, "Green Tea", g.store.Products.Snapshot().Data[0].Name)

	w, _ = g.do(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, g.store.Products.Snapshot().Data)
	assert.Empty(t, g.api.Items("products"))
}

func jsonNumber(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestResources_Index(t *testing.T) {
	g := newGateway(t)

	w, env := g.do(t, http.MethodGet, "/resources", "")
	require.Equal(t, http.StatusOK, w.Code)
	var views []struct {
		Resource string `json:"resource"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &views))
	require.Len(t, views, len(g.store.Names()))
	assert.Equal(t, "products", views[0].Resource)
	assert.Equal(t, "audit-logs", views[len(views)-1].Resource)
}

func TestResources_Errors(t *testing.T) {
	g := newGateway(t)
	g.login(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"unknown resource", http.MethodGet, "/resources/customers", "", http.StatusNotFound, "UNKNOWN_RESOURCE"},
		{"read-only resource", http.MethodPost, "/resources/audit-logs", `{"action":"x"}`, http.StatusMethodNotAllowed, "READ_ONLY_RESOURCE"},
		{"bad id", http.MethodGet, "/resources/products/abc", "", http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"non-object body", http.MethodPost, "/resources/products", `[1,2]`, http.StatusBadRequest, dto.ErrCodeInvalidJSON},
		{"missing record", http.MethodGet, "/resources/products/999", "", http.StatusNotFound, dto.ErrCodeUpstream},
		{"upstream validation", http.MethodPost, "/resources/products", `{"name":""}`, http.StatusBadRequest, dto.ErrCodeUpstream},
		{"unknown route", http.MethodGet, "/nope", "", http.StatusNotFound, dto.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := g.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
			assert.NotEmpty(t, env.Error.RequestID)
		})
	}
}

func TestResources_UpstreamFieldErrorsAreForwarded(t *testing.T) {
	g := newGateway(t)
	g.login(t)

	_, env := g.do(t, http.MethodPost, "/resources/branches", `{"name":""}`)
	require.NotNil(t, env.Error)
	assert.Equal(t, "name: This field may not be blank.", env.Error.Message)
	assert.Equal(t, []string{"This field may not be blank."}, env.Error.Fields["name"])
}

func TestResources_ReauthRequired(t *testing.T) {
	g := newGateway(t)
	g.login(t)

	creds := g.store.Session.Current()
	g.api.ExpireAccess(creds.Access)
	g.api.ExpireRefresh(creds.Refresh)

	w, env := g.do(t, http.MethodPost, "/resources/sales/fetch", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "REAUTH_REQUIRED", env.Error.Code)
	assert.Equal(t, "Refresh token expired, login required.", env.Error.Message)
	assert.Equal(t, 1, g.api.RefreshCalls())
	assert.Empty(t, g.store.Session.Current().Access)
}

func TestResources_UpstreamUnreachable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	api := apitest.New(t)
	baseURL := api.BaseURL()
	api.Close()

	g := newGatewayFor(t, api, baseURL)

	w, env := g.do(t, http.MethodPost, "/resources/products/fetch", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrCodeUpstreamUnavailable, env.Error.Code)

	_, env = g.do(t, http.MethodGet, "/resources/products", "")
	assert.Contains(t, string(env.Data), `"error":`)
}

func TestReports(t *testing.T) {
	g := newGateway(t)
	g.login(t)

	g.api.Seed("sales", apitest.Item{
		"invoice_no":   "INV-1",
		"total_amount": "150.00",
		"created_at":   "2026-10-12T10:00:00Z",
		"items": []any{
			map[string]any{"product": 1, "category_name": "Grocery", "quantity": 3, "unit_price": "50.00"},
		},
	})
	g.api.Seed("purchases", apitest.Item{
		"total_amount": "80.00",
		"created_at":   "2026-10-14T10:00:00Z",
		"items": []any{
			map[string]any{"product": 1, "quantity": 4, "unit_cost": "20.00"},
		},
	})
	g.api.Seed("products", apitest.Item{"name": "Rice", "price": "50.00", "quantity": 2})

	w, env := g.do(t, http.MethodGet, "/reports/weekly", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var weekly []report.WeeklyPoint
	require.NoError(t, json.Unmarshal(env.Data, &weekly))
	require.Len(t, weekly, 7)
	assert.Equal(t, "Mon", weekly[1].Day)
	assert.Equal(t, "150", weekly[1].Sales.String())
	assert.Equal(t, "80", weekly[3].Purchases.String())

	w, env = g.do(t, http.MethodGet, "/reports/categories", "")
	require.Equal(t, http.StatusOK, w.Code)
	var cats []report.CategoryPoint
	require.NoError(t, json.Unmarshal(env.Data, &cats))
	require.Len(t, cats, 4)
	assert.Equal(t, "Grocery (Sales)", cats[0].Name)
	assert.Equal(t, "150", cats[0].Value.String())

	w, env = g.do(t, http.MethodGet, "/reports/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	var summary report.Summary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 1, summary.ProductCount)
	assert.Equal(t, "150", summary.Revenue.String())
	assert.Len(t, summary.LowStock, 1)
}

func TestMetricsEndpoint(t *testing.T) {
	g := newGateway(t)

	g.do(t, http.MethodGet, "/healthz", "")
	w, _ := g.do(t, http.MethodGet, g.cfg.Metrics.Path, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `retailctl_gateway_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestServe_ShutsDownWhenContextEnds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Chdir(t.TempDir())
	t.Setenv("RETAIL_SESSION_BACKEND", "memory")
	cfg, err := config.Load("")
	require.NoError(t, err)

	st, err := store.New(cfg, tokenstore.NewMemoryStore(), nil, nil)
	require.NoError(t, err)
	srv := New(cfg, Dependencies{
		Sessions:    st.Users,
		Collections: st,
		Resetter:    st,
		Reports:     report.NewService(st.Products, st.Sales, st.Purchases, time.UTC),
	}, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
