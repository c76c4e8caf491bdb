package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bsthardware/storefront-backend/api/controllers"
	"github.com/bsthardware/storefront-backend/api/responses"
	product "github.com/bsthardware/storefront-backend/internal/products"
	"github.com/bsthardware/storefront-backend/internal/users"
	pkgAuth "github.com/bsthardware/storefront-backend/pkg/auth"
	"github.com/bsthardware/storefront-backend/pkg/config"
	"github.com/bsthardware/storefront-backend/pkg/enums"
	"github.com/bsthardware/storefront-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubUsers struct{ users.Service }

func (stubUsers) List(context.Context) ([]users.UserDTO, error) {
	return []users.UserDTO{{ID: uuid.New(), Username: "maria"}}, nil
}

type stubProducts struct{ product.Service }

func (stubProducts) List(context.Context, product.ListProductsInput) ([]product.ProductDTO, error) {
	return []product.ProductDTO{}, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		App:     config.AppConfig{Env: "dev"},
		JWT:     config.JWTConfig{Secret: "router-secret", Issuer: "bst-hardware", ExpirationMinutes: 60},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Uploads: config.UploadsConfig{Dir: t.TempDir(), MaxUploadMB: 1},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewRouter(Dependencies{
		Config:    cfg,
		Readiness: map[string]controllers.Pinger{"database": stubPinger{}},
		Metrics:   metrics.NewHTTPMetrics(reg),
		Gatherer:  reg,
		Users:     stubUsers{},
		Products:  stubProducts{},
	})
}

func token(t *testing.T, cfg *config.Config, role enums.Role) string {
	t.Helper()
	tok, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{ID: uuid.New(), Role: role, JTI: uuid.NewString()})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return tok
}

func do(t *testing.T, h http.Handler, method, path, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func TestProtectedRoutes(t *testing.T) {
	cfg := testConfig(t)
	h := newTestRouter(t, cfg)
	userToken := token(t, cfg, enums.RoleUser)
	adminToken := token(t, cfg, enums.RoleAdmin)

	tests := []struct {
		name    string
		method  string
		path    string
		bearer  string
		status  int
		message string
	}{
		{name: "cart without token", method: http.MethodGet, path: "/cart", status: http.StatusUnauthorized, message: "Not authorized, no token provided"},
		{name: "users without token", method: http.MethodGet, path: "/users", status: http.StatusUnauthorized, message: "Not authorized, no token provided"},
		{name: "garbage token", method: http.MethodGet, path: "/users", bearer: "garbage", status: http.StatusUnauthorized, message: "Not authorized, token failed or expired"},
		{name: "user on admin route", method: http.MethodGet, path: "/users", bearer: userToken, status: http.StatusForbidden, message: "Access denied. Your role (user) is not authorized to access this resource."},
		{name: "user on admin route under api prefix", method: http.MethodGet, path: "/api/cart-notifications", bearer: userToken, status: http.StatusForbidden},
		{name: "user creating product", method: http.MethodPost, path: "/products", bearer: userToken, status: http.StatusForbidden},
		{name: "admin on cart", method: http.MethodGet, path: "/cart", bearer: adminToken, status: http.StatusForbidden, message: "Access denied. Your role (admin) is not authorized to access this resource."},
		{name: "admin on admin route", method: http.MethodGet, path: "/users", bearer: adminToken, status: http.StatusOK},
		{name: "public products", method: http.MethodGet, path: "/products", status: http.StatusOK},
		{name: "public products under api prefix", method: http.MethodGet, path: "/api/products", status: http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, h, tc.method, tc.path, tc.bearer)
			if resp.Code != tc.status {
				t.Fatalf("expected %d got %d: %s", tc.status, resp.Code, resp.Body.String())
			}
			if tc.message == "" {
				return
			}
			var body responses.APIError
			if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Message != tc.message {
				t.Fatalf("unexpected message %q", body.Message)
			}
		})
	}
}

func TestOperationalEndpoints(t *testing.T) {
	cfg := testConfig(t)
	if err := os.WriteFile(filepath.Join(cfg.Uploads.Dir, "1-hammer.png"), []byte("png"), 0o644); err != nil {
		t.Fatalf("write upload: %v", err)
	}
	h := newTestRouter(t, cfg)

	if resp := do(t, h, http.MethodGet, "/health", ""); resp.Code != http.StatusOK {
		t.Fatalf("health: %d", resp.Code)
	}
	if resp := do(t, h, http.MethodGet, "/health/ready", ""); resp.Code != http.StatusOK {
		t.Fatalf("ready: %d", resp.Code)
	}
	if resp := do(t, h, http.MethodGet, "/uploads/1-hammer.png", ""); resp.Code != http.StatusOK || resp.Body.String() != "png" {
		t.Fatalf("uploads: %d %q", resp.Code, resp.Body.String())
	}

	resp := do(t, h, http.MethodGet, "/metrics", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("metrics: %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "storefront_http_requests_total") {
		t.Fatalf("expected request counter in exposition:\n%s", resp.Body.String())
	}
}
