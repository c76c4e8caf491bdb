package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bsthardware/storefront-backend/api/middleware"
	"github.com/bsthardware/storefront-backend/api/responses"
	"github.com/bsthardware/storefront-backend/internal/cart"
	product "github.com/bsthardware/storefront-backend/internal/products"
	"github.com/bsthardware/storefront-backend/pkg/enums"
	pkgerrors "github.com/bsthardware/storefront-backend/pkg/errors"
)

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) responses.APIError {
	t.Helper()
	var body responses.APIError
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, resp.Body.String())
	}
	return body
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestHealthReady(t *testing.T) {
	ok := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name   string
		checks map[string]Pinger
		status int
	}{
		{name: "all up", checks: map[string]Pinger{"database": ok}, status: http.StatusOK},
		{name: "db down", checks: map[string]Pinger{"database": down}, status: http.StatusServiceUnavailable},
		{name: "db never connected", checks: map[string]Pinger{"database": nil}, status: http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			HealthReady(nil, tc.checks)(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			if resp.Code != tc.status {
				t.Fatalf("expected %d got %d", tc.status, resp.Code)
			}
		})
	}
}

func TestHealthLive(t *testing.T) {
	resp := httptest.NewRecorder()
	HealthLive()(resp, httptest.NewRequest(http.MethodGet, "/health", nil))
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected response %d %s", resp.Code, resp.Body.String())
	}
}

type stubProductService struct {
	product.Service
	got product.ProductInput
	err error
}

func (s *stubProductService) Create(_ context.Context, input product.ProductInput) (*product.MutationResult, error) {
	s.got = input
	if input.Image != nil {
		if _, err := io.ReadAll(input.Image.Content); err != nil {
			return nil, err
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &product.MutationResult{Message: "Product added successfully.", Product: &product.ProductDTO{ID: uuid.New(), Name: input.Name}}, nil
}

func TestProductsCreateJSONAcceptsStringNumbers(t *testing.T) {
	svc := &stubProductService{}
	body := `{"name":"Wrench","price":"12.50","stock_quantity":"7","category":"Plumbing","id":"ignored"}`
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	ProductsCreate(svc, 1<<20, nil)(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.got.Price == nil || svc.got.Price.String() != "12.5" {
		t.Fatalf("unexpected price %v", svc.got.Price)
	}
	if svc.got.StockQuantity == nil || *svc.got.StockQuantity != 7 {
		t.Fatalf("unexpected stock %v", svc.got.StockQuantity)
	}
}

func TestProductsCreateRejectsNonNumericPrice(t *testing.T) {
	svc := &stubProductService{}
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{"name":"Wrench","price":"abc","stock_quantity":1}`))
	resp := httptest.NewRecorder()

	ProductsCreate(svc, 1<<20, nil)(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if msg := decodeError(t, resp).Message; msg != "Price must be a non-negative number." {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestProductsCreateMultipart(t *testing.T) {
	svc := &stubProductService{}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("name", "Level")
	_ = mw.WriteField("price", "19.99")
	_ = mw.WriteField("stock_quantity", "4")
	_ = mw.WriteField("description", "600mm aluminium")
	part, err := mw.CreateFormFile("image", "level.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte("\x89PNG\r\n\x1a\n0000"))
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/products", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp := httptest.NewRecorder()

	ProductsCreate(svc, 1<<20, nil)(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.got.Image == nil || svc.got.Image.Filename != "level.png" {
		t.Fatalf("expected image upload, got %+v", svc.got.Image)
	}
	if svc.got.Description == nil || *svc.got.Description != "600mm aluminium" {
		t.Fatalf("unexpected description %v", svc.got.Description)
	}
	if svc.got.ImageURL != nil {
		t.Fatalf("expected no image_url, got %q", *svc.got.ImageURL)
	}
}

func TestProductsGetRejectsBadID(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/products/nope", nil), "id", "nope")
	resp := httptest.NewRecorder()
	ProductsGet(&stubProductService{}, nil)(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

type stubCartService struct {
	cart.Service
	userID    uuid.UUID
	productID uuid.UUID
	quantity  int
}

func (s *stubCartService) AddToCart(_ context.Context, userID, productID uuid.UUID, quantity int) (*cart.ItemResult, error) {
	s.userID, s.productID, s.quantity = userID, productID, quantity
	return &cart.ItemResult{Message: "Product added to cart", ProductID: productID, Quantity: quantity}, nil
}

func (s *stubCartService) Checkout(context.Context, uuid.UUID) (*cart.CheckoutResult, error) {
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "Cart is empty")
}

func TestCartAddUsesAuthenticatedUser(t *testing.T) {
	svc := &stubCartService{}
	userID, productID := uuid.New(), uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/cart/add", strings.NewReader(`{"product_id":"`+productID.String()+`","quantity":2}`))
	req = req.WithContext(middleware.WithIdentity(req.Context(), userID.String(), enums.RoleUser))
	resp := httptest.NewRecorder()

	CartAdd(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.userID != userID || svc.productID != productID || svc.quantity != 2 {
		t.Fatalf("unexpected call %+v", svc)
	}
}

func TestCartRequiresIdentity(t *testing.T) {
	resp := httptest.NewRecorder()
	CartAdd(&stubCartService{}, nil)(resp, httptest.NewRequest(http.MethodPost, "/cart/add", strings.NewReader(`{}`)))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartCheckoutEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/cart/checkout", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), uuid.NewString(), enums.RoleUser))
	resp := httptest.NewRecorder()

	CartCheckout(&stubCartService{}, nil)(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if msg := decodeError(t, resp).Message; msg != "Cart is empty" {
		t.Fatalf("unexpected message %q", msg)
	}
}
