package cart

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bsthardware/storefront-backend/pkg/db/dbtest"
	"github.com/bsthardware/storefront-backend/pkg/db/models"
	pkgerrors "github.com/bsthardware/storefront-backend/pkg/errors"
)

type countingMetrics struct {
	actions []string
}

func (m *countingMetrics) CartEvent(action string) {
	m.actions = append(m.actions, action)
}

type fixture struct {
	svc     Service
	conn    *gorm.DB
	metrics *countingMetrics
	user    *models.User
	hammer  *models.Product
	drill   *models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := dbtest.Client(t)
	conn := client.DB()

	user := &models.User{Username: "maria", Email: "maria@example.com", PasswordHash: "x"}
	require.NoError(t, conn.Create(user).Error)
	hammer := &models.Product{Name: "Claw Hammer", Price: decimal.RequireFromString("12.35"), StockQuantity: 3, Category: "Hand Tools"}
	require.NoError(t, conn.Create(hammer).Error)
	drill := &models.Product{Name: "Drill", Price: decimal.RequireFromString("99.99"), StockQuantity: 1, Category: "Power Tools"}
	require.NoError(t, conn.Create(drill).Error)

	metrics := &countingMetrics{}
	svc, err := NewService(ServiceParams{Repo: NewRepository(conn), Tx: client, Metrics: metrics})
	require.NoError(t, err)

	return &fixture{svc: svc, conn: conn, metrics: metrics, user: user, hammer: hammer, drill: drill}
}

func requireCode(t *testing.T, err error, code pkgerrors.Code, message string) {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code())
	assert.Equal(t, message, typed.Message())
}

func TestAddTwiceSumsQuantityAndLogsTwice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.svc.AddToCart(ctx, f.user.ID, f.hammer.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, "Product added to cart", first.Message)
	assert.Equal(t, 2, first.Quantity)

	second, err := f.svc.AddToCart(ctx, f.user.ID, f.hammer.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, second.Quantity)

	var items []models.CartItem
	require.NoError(t, f.conn.Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)

	var notes []models.CartNotification
	require.NoError(t, f.conn.Order("created_at ASC").Find(&notes).Error)
	require.Len(t, notes, 2)
	assert.Equal(t, "maria", notes[0].Username)
	assert.Equal(t, "Claw Hammer", notes[0].ProductName)
	assert.Equal(t, 2, notes[0].Quantity)
	assert.True(t, notes[0].Total.Equal(decimal.RequireFromString("24.70")), "total %s", notes[0].Total)
	assert.True(t, notes[1].Total.Equal(decimal.RequireFromString("37.05")), "total %s", notes[1].Total)

	assert.Equal(t, []string{"add", "add"}, f.metrics.actions)
}

func TestAddIsNotCappedByStock(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.AddToCart(context.Background(), f.user.ID, f.drill.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Quantity)
}

func TestAddValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.AddToCart(ctx, f.user.ID, f.hammer.ID, 0)
	requireCode(t, err, pkgerrors.CodeValidation, "Invalid product ID or quantity")

	_, err = f.svc.AddToCart(ctx, f.user.ID, uuid.Nil, 1)
	requireCode(t, err, pkgerrors.CodeValidation, "Invalid product ID or quantity")

	_, err = f.svc.AddToCart(ctx, f.user.ID, uuid.New(), 1)
	requireCode(t, err, pkgerrors.CodeNotFound, "Product not found.")

	_, err = f.svc.AddToCart(ctx, uuid.New(), f.hammer.ID, 1)
	requireCode(t, err, pkgerrors.CodeNotFound, "User not found")

	var carts int64
	require.NoError(t, f.conn.Model(&models.Cart{}).Count(&carts).Error)
	assert.Zero(t, carts)
}

func TestQuantityBounds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tests := []struct {
		name     string
		quantity int
	}{
		{name: "above line cap", quantity: MaxItemQuantity + 1},
		{name: "beyond int32", quantity: math.MaxInt32 + 1},
		{name: "max int", quantity: math.MaxInt},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.AddToCart(ctx, f.user.ID, f.hammer.ID, tc.quantity)
			requireCode(t, err, pkgerrors.CodeValidation, "Invalid product ID or quantity")
			_, err = f.svc.UpdateCartItem(ctx, f.user.ID, f.hammer.ID, tc.quantity)
			requireCode(t, err, pkgerrors.CodeValidation, "Invalid product ID or quantity")
		})
	}

	full, err := f.svc.AddToCart(ctx, f.user.ID, f.hammer.ID, MaxItemQuantity)
	require.NoError(t, err)
	assert.Equal(t, MaxItemQuantity, full.Quantity)

	_, err = f.svc.AddToCart(ctx, f.user.ID, f.hammer.ID, 1)
	requireCode(t, err, pkgerrors.CodeValidation, "Invalid product ID or quantity")

	var item models.CartItem
	require.NoError(t, f.conn.Where("product_id = ?", f.hammer.ID).First(&item).Error)
	assert.Equal(t, MaxItemQuantity, item.Quantity)

	var notes int64
	require.NoError(t, f.conn.Model(&models.CartNotification{}).Count(&notes).Error)
	assert.Equal(t, int64(1), notes)
}

func TestAddRejectsLineTotalOverflow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	crane := &models.Product{Name: "Tower Crane", Price: decimal.RequireFromString("2000000"), Category: "Power Tools"}
	require.NoError(t, f.conn.Create(crane).Error)

	_, err := f.svc.AddToCart(ctx, f.user.ID, crane.ID, 6000)
	requireCode(t, err, pkgerrors.CodeValidation, "Invalid product ID or quantity")

	res, err := f.svc.AddToCart(ctx, f.user.ID, crane.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Quantity)
}

func TestGetCartCreatesLazilyAndTotals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	empty, err := f.svc.GetCart(ctx, f.user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, empty.CartID)
	assert.Empty(t, empty.Items)
	assert.True(t, empty.Subtotal.IsZero())

	_, err = f.svc.AddToCart(ctx, f.user.ID, f.hammer.ID, 2)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, f.user.ID, f.drill.ID, 1)
	require.NoError(t, err)

	got, err := f.svc.GetCart(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, empty.CartID, got.CartID)
	require.Len(t, got.Items, 2)
	assert.Equal(t, f.hammer.ID, got.Items[0].ProductID)
	assert.Equal(t, 3, got.Items[0].StockQuantity)
	assert.True(t, got.Items[0].LineTotal.Equal(decimal.RequireFromString("24.70")))
	assert.True(t, got.Subtotal.Equal(decimal.RequireFromString("124.69")), "subtotal %s", got.Subtotal)

	_, err = f.svc.GetCart(ctx, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound, "User not found")
}

func TestUpdateAndRemove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.UpdateCartItem(ctx, f.user.ID, f.hammer.ID, 4)
	requireCode(t, err, pkgerrors.CodeNotFound, "Cart not found")
	_, err = f.svc.RemoveFromCart(ctx, f.user.ID, f.hammer.ID)
	requireCode(t, err, pkgerrors.CodeNotFound, "Cart not found")

	_, err = f.svc.AddToCart(ctx, f.user.ID, f.hammer.ID, 1)
	require.NoError(t, err)

	res, err := f.svc.UpdateCartItem(ctx, f.user.ID, f.hammer.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, "Cart updated successfully", res.Message)

	item := models.CartItem{}
	require.NoError(t, f.conn.Where("product_id = ?", f.hammer.ID).First(&item).Error)
	assert.Equal(t, 4, item.Quantity)

	_, err = f.svc.UpdateCartItem(ctx, f.user.ID, f.hammer.ID, 0)
	requireCode(t, err, pkgerrors.CodeValidation, "Invalid product ID or quantity")
	_, err = f.svc.UpdateCartItem(ctx, f.user.ID, f.drill.ID, 2)
	requireCode(t, err, pkgerrors.CodeNotFound, "Item not found in cart")

	removed, err := f.svc.RemoveFromCart(ctx, f.user.ID, f.hammer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Item removed from cart", removed.Message)

	_, err = f.svc.RemoveFromCart(ctx, f.user.ID, f.hammer.ID)
	requireCode(t, err, pkgerrors.CodeNotFound, "Item not found in cart")

	assert.Equal(t, []string{"add", "update", "remove"}, f.metrics.actions)
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Checkout(ctx, f.user.ID)
	requireCode(t, err, pkgerrors.CodeValidation, "Cart is empty")

	_, err = f.svc.GetCart(ctx, f.user.ID)
	require.NoError(t, err)
	_, err = f.svc.Checkout(ctx, f.user.ID)
	requireCode(t, err, pkgerrors.CodeValidation, "Cart is empty")

	_, err = f.svc.AddToCart(ctx, f.user.ID, f.hammer.ID, 2)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, f.user.ID, f.drill.ID, 1)
	require.NoError(t, err)

	res, err := f.svc.Checkout(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Checkout successful", res.Message)
	assert.Equal(t, 2, res.ItemsCleared)
	assert.True(t, res.Total.Equal(decimal.RequireFromString("124.69")))

	var remaining int64
	require.NoError(t, f.conn.Model(&models.CartItem{}).Count(&remaining).Error)
	assert.Zero(t, remaining)

	var notes int64
	require.NoError(t, f.conn.Model(&models.CartNotification{}).Count(&notes).Error)
	assert.Equal(t, int64(2), notes)

	_, err = f.svc.Checkout(ctx, f.user.ID)
	requireCode(t, err, pkgerrors.CodeValidation, "Cart is empty")
}

func TestProductDeleteCascadesCartItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.AddToCart(ctx, f.user.ID, f.hammer.ID, 1)
	require.NoError(t, err)
	require.NoError(t, f.conn.Delete(&models.Product{}, "id = ?", f.hammer.ID).Error)

	got, err := f.svc.GetCart(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)

	var notes int64
	require.NoError(t, f.conn.Model(&models.CartNotification{}).Count(&notes).Error)
	assert.Zero(t, notes)
}

func TestItemRequestAcceptsBothKeys(t *testing.T) {
	id := uuid.New()
	if got := (ItemRequest{ProductID: &id}).Product(); got != id {
		t.Fatalf("expected camel key to win, got %s", got)
	}
	if got := (ItemRequest{ProductIDSnake: &id}).Product(); got != id {
		t.Fatalf("expected snake key, got %s", got)
	}
	if got := (ItemRequest{}).Product(); got != uuid.Nil {
		t.Fatalf("expected nil id, got %s", got)
	}
}
