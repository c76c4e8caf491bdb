package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bsthardware/storefront-backend/pkg/db/models"
	pkgerrors "github.com/bsthardware/storefront-backend/pkg/errors"
	"github.com/bsthardware/storefront-backend/pkg/logger"
)

const (
	invalidItemMessage     = "Invalid product ID or quantity"
	productNotFoundMessage = "Product not found."
	userNotFoundMessage    = "User not found"
	cartNotFoundMessage    = "Cart not found"
	itemNotFoundMessage    = "Item not found in cart"
	cartEmptyMessage       = "Cart is empty"

	// MaxItemQuantity bounds a single cart line.
	MaxItemQuantity = 10000
)

// maxLineTotal is the largest value the numeric(12,2) notification total holds.
var maxLineTotal = decimal.RequireFromString("9999999999.99")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartMetrics interface {
	CartEvent(action string)
}

// Service exposes a user's cart operations.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	AddToCart(ctx context.Context, userID, productID uuid.UUID, quantity int) (*ItemResult, error)
	UpdateCartItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*ItemResult, error)
	RemoveFromCart(ctx context.Context, userID, productID uuid.UUID) (*ItemResult, error)
	Checkout(ctx context.Context, userID uuid.UUID) (*CheckoutResult, error)
}

// ServiceParams wires the cart service. Metrics and Logger are optional.
type ServiceParams struct {
	Repo    *Repository
	Tx      txRunner
	Metrics cartMetrics
	Logger  *logger.Logger
}

type service struct {
	repo    *Repository
	tx      txRunner
	metrics cartMetrics
	logg    *logger.Logger
}

// NewService builds a cart service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	var out *CartDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindUser(ctx, userID); err != nil {
			return notFoundOr(err, userNotFoundMessage, "load user")
		}
		c, err := repo.EnsureCart(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "ensure cart")
		}
		rows, err := repo.Items(ctx, c.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart items")
		}
		items, subtotal := toItems(rows)
		out = &CartDTO{CartID: c.ID, Items: items, Subtotal: subtotal}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddToCart increments the line for productID and appends a cart
// notification, all in one transaction.
func (s *service) AddToCart(ctx context.Context, userID, productID uuid.UUID, quantity int) (*ItemResult, error) {
	if !validItem(productID, quantity) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, invalidItemMessage)
	}

	var stored int
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product, err := repo.FindProduct(ctx, productID)
		if err != nil {
			return notFoundOr(err, productNotFoundMessage, "load product")
		}
		user, err := repo.FindUser(ctx, userID)
		if err != nil {
			return notFoundOr(err, userNotFoundMessage, "load user")
		}
		if lineTotal(product.Price, quantity).GreaterThan(maxLineTotal) {
			return pkgerrors.New(pkgerrors.CodeValidation, invalidItemMessage)
		}
		c, err := repo.EnsureCart(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "ensure cart")
		}
		existing, err := repo.FindItem(ctx, c.ID, productID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart item")
		case existing.Quantity > MaxItemQuantity-quantity:
			return pkgerrors.New(pkgerrors.CodeValidation, invalidItemMessage)
		}
		if err := repo.AddQuantity(ctx, c.ID, productID, quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert cart item")
		}
		item, err := repo.FindItem(ctx, c.ID, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload cart item")
		}
		stored = item.Quantity

		notification := &models.CartNotification{
			UserID:      user.ID,
			Username:    user.Username,
			ProductID:   product.ID,
			ProductName: product.Name,
			Price:       product.Price,
			Quantity:    quantity,
			Total:       lineTotal(product.Price, quantity),
		}
		if err := repo.AppendNotification(ctx, notification); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append cart notification")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.observe(ctx, "add", userID)
	return &ItemResult{Message: "Product added to cart", ProductID: productID, Quantity: stored}, nil
}

func (s *service) UpdateCartItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*ItemResult, error) {
	if !validItem(productID, quantity) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, invalidItemMessage)
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		c, err := repo.FindCart(ctx, userID)
		if err != nil {
			return notFoundOr(err, cartNotFoundMessage, "load cart")
		}
		updated, err := repo.SetQuantity(ctx, c.ID, productID, quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart item")
		}
		if !updated {
			return pkgerrors.New(pkgerrors.CodeNotFound, itemNotFoundMessage)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.observe(ctx, "update", userID)
	return &ItemResult{Message: "Cart updated successfully", ProductID: productID, Quantity: quantity}, nil
}

func validItem(productID uuid.UUID, quantity int) bool {
	return productID != uuid.Nil && quantity >= 1 && quantity <= MaxItemQuantity
}

func (s *service) RemoveFromCart(ctx context.Context, userID, productID uuid.UUID) (*ItemResult, error) {
	c, err := s.repo.FindCart(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, cartNotFoundMessage, "load cart")
	}
	removed, err := s.repo.RemoveItem(ctx, c.ID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove cart item")
	}
	if !removed {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, itemNotFoundMessage)
	}

	s.observe(ctx, "remove", userID)
	return &ItemResult{Message: "Item removed from cart", ProductID: productID}, nil
}

// Checkout clears every line of the cart. Nothing is recorded beyond the
// returned totals.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID) (*CheckoutResult, error) {
	var out *CheckoutResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		c, err := repo.FindCart(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, cartEmptyMessage)
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}
		rows, err := repo.Items(ctx, c.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart items")
		}
		if len(rows) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, cartEmptyMessage)
		}
		if _, err := repo.ClearItems(ctx, c.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}
		_, total := toItems(rows)
		out = &CheckoutResult{Message: "Checkout successful", ItemsCleared: len(rows), Total: total}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.observe(ctx, "checkout", userID)
	return out, nil
}

func (s *service) observe(ctx context.Context, action string, userID uuid.UUID) {
	if s.metrics != nil {
		s.metrics.CartEvent(action)
	}
	if s.logg != nil {
		s.logg.Debug(s.logg.WithFields(ctx, map[string]any{"cart_action": action, "user_id": userID.String()}), "cart.mutated")
	}
}

func notFoundOr(err error, message, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
