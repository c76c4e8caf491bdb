package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/bsthardware/storefront-backend/api/middleware"
	"github.com/bsthardware/storefront-backend/internal/canvass"
	"github.com/bsthardware/storefront-backend/pkg/db/dbtest"
	"github.com/bsthardware/storefront-backend/pkg/db/models"
	"github.com/bsthardware/storefront-backend/pkg/enums"
)

func TestCanvassUpdateStatus(t *testing.T) {
	conn := dbtest.Open(t)
	user := &models.User{Username: "kim", Email: "kim@example.com", PasswordHash: "x"}
	require.NoError(t, conn.Create(user).Error)
	req := &models.CanvassRequest{UserID: user.ID, Message: "price check"}
	require.NoError(t, conn.Create(req).Error)

	svc, err := canvass.NewService(canvass.NewRepository(conn))
	require.NoError(t, err)
	handler := CanvassUpdateStatus(svc, nil)

	tests := []struct {
		name    string
		id      string
		body    string
		status  int
		message string
	}{
		{name: "shipped rejected", id: req.ID.String(), body: `{"status":"shipped"}`, status: http.StatusBadRequest, message: "Invalid status provided."},
		{name: "unknown request", id: uuid.NewString(), body: `{"status":"closed"}`, status: http.StatusNotFound, message: "Canvass request not found."},
		{name: "responded", id: req.ID.String(), body: `{"status":"responded"}`, status: http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := withURLParam(httptest.NewRequest(http.MethodPut, "/canvass/requests/"+tc.id+"/status", strings.NewReader(tc.body)), "id", tc.id)
			resp := httptest.NewRecorder()
			handler(resp, r)
			if resp.Code != tc.status {
				t.Fatalf("expected %d got %d: %s", tc.status, resp.Code, resp.Body.String())
			}
			if tc.message != "" {
				if msg := decodeError(t, resp).Message; msg != tc.message {
					t.Fatalf("unexpected message %q", msg)
				}
			}
		})
	}
}

func TestCanvassCreateMessageLimits(t *testing.T) {
	conn := dbtest.Open(t)
	user := &models.User{Username: "lee", Email: "lee@example.com", PasswordHash: "x"}
	require.NoError(t, conn.Create(user).Error)

	svc, err := canvass.NewService(canvass.NewRepository(conn))
	require.NoError(t, err)
	handler := CanvassCreate(svc, nil)

	tests := []struct {
		name    string
		message string
		status  int
		want    string
	}{
		{name: "blank", message: "   ", status: http.StatusBadRequest, want: "Canvass message cannot be empty."},
		{name: "too long", message: strings.Repeat("a", 2001), status: http.StatusBadRequest, want: "validation failed"},
		{name: "at limit", message: strings.Repeat("a", 2000), status: http.StatusCreated},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := `{"message":"` + tc.message + `"}`
			r := httptest.NewRequest(http.MethodPost, "/canvass/request", strings.NewReader(body))
			r = r.WithContext(middleware.WithIdentity(r.Context(), user.ID.String(), enums.RoleUser))
			resp := httptest.NewRecorder()
			handler(resp, r)
			if resp.Code != tc.status {
				t.Fatalf("expected %d got %d: %s", tc.status, resp.Code, resp.Body.String())
			}
			if tc.want != "" {
				if msg := decodeError(t, resp).Message; msg != tc.want {
					t.Fatalf("unexpected message %q", msg)
				}
			}
		})
	}
}
