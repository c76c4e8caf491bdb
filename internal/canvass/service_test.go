package canvass

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bsthardware/storefront-backend/pkg/db/dbtest"
	"github.com/bsthardware/storefront-backend/pkg/db/models"
	"github.com/bsthardware/storefront-backend/pkg/enums"
	pkgerrors "github.com/bsthardware/storefront-backend/pkg/errors"
)

func setup(t *testing.T) (Service, *gorm.DB, *models.User, *models.Product) {
	t.Helper()
	conn := dbtest.Open(t)
	user := &models.User{Username: "leo", Email: "leo@example.com", PasswordHash: "x"}
	require.NoError(t, conn.Create(user).Error)
	product := &models.Product{Name: "Angle Grinder", Price: decimal.NewFromInt(75), StockQuantity: 4, Category: "Power Tools"}
	require.NoError(t, conn.Create(product).Error)

	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc, conn, user, product
}

func requireCode(t *testing.T, err error, code pkgerrors.Code, message string) {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code())
	assert.Equal(t, message, typed.Message())
}

func TestCreateAndList(t *testing.T) {
	ctx := context.Background()
	svc, _, user, product := setup(t)

	res, err := svc.Create(ctx, user.ID, CreateRequest{ProductID: &product.ID, Message: "  bulk price for 20?  "})
	require.NoError(t, err)
	assert.Equal(t, "Canvass request submitted successfully.", res.Message)
	assert.Equal(t, enums.CanvassStatusPending, res.Request.Status)
	assert.Equal(t, "bulk price for 20?", res.Request.Message)

	time.Sleep(2 * time.Millisecond)
	_, err = svc.Create(ctx, user.ID, CreateRequest{Message: "do you deliver?"})
	require.NoError(t, err)

	rows, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "do you deliver?", rows[0].Message)
	assert.Nil(t, rows[0].ProductName)
	assert.Equal(t, "leo", rows[1].Username)
	assert.Equal(t, "leo@example.com", rows[1].UserEmail)
	require.NotNil(t, rows[1].ProductName)
	assert.Equal(t, "Angle Grinder", *rows[1].ProductName)

	mine, err := svc.ListMine(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	others, err := svc.ListMine(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, user, _ := setup(t)

	_, err := svc.Create(ctx, user.ID, CreateRequest{Message: "   "})
	requireCode(t, err, pkgerrors.CodeValidation, "Canvass message cannot be empty.")

	missing := uuid.New()
	_, err = svc.Create(ctx, user.ID, CreateRequest{ProductID: &missing, Message: "hello"})
	requireCode(t, err, pkgerrors.CodeNotFound, "Product not found.")

	_, err = svc.Create(ctx, uuid.New(), CreateRequest{Message: "hello"})
	requireCode(t, err, pkgerrors.CodeNotFound, "User not found")
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	svc, conn, user, _ := setup(t)

	created, err := svc.Create(ctx, user.ID, CreateRequest{Message: "quote please"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		id      uuid.UUID
		status  string
		code    pkgerrors.Code
		message string
	}{
		{name: "shipped is not a canvass status", id: created.Request.ID, status: "shipped", code: pkgerrors.CodeValidation, message: "Invalid status provided."},
		{name: "blank status", id: created.Request.ID, status: "", code: pkgerrors.CodeValidation, message: "Invalid status provided."},
		{name: "unknown request", id: uuid.New(), status: "closed", code: pkgerrors.CodeNotFound, message: "Canvass request not found."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.UpdateStatus(ctx, tc.id, tc.status)
			requireCode(t, err, tc.code, tc.message)
		})
	}

	res, err := svc.UpdateStatus(ctx, created.Request.ID, "responded")
	require.NoError(t, err)
	assert.Equal(t, enums.CanvassStatusResponded, res.Status)

	var stored models.CanvassRequest
	require.NoError(t, conn.First(&stored, "id = ?", created.Request.ID).Error)
	assert.Equal(t, enums.CanvassStatusResponded, stored.Status)
}
