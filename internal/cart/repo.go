package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bsthardware/storefront-backend/internal/repo"
	"github.com/bsthardware/storefront-backend/pkg/db/models"
)

// Repository exposes persistence operations for carts and their items.
type Repository struct {
	repo.Base
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// itemRow is a cart item joined with its product.
type itemRow struct {
	ProductID     uuid.UUID
	Name          string
	Price         decimal.Decimal
	ImageURL      *string
	StockQuantity int
	Quantity      int
}

func (r *Repository) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).Select("id", "username").First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.DB(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindCart returns the cart owned by userID.
func (r *Repository) FindCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var c models.Cart
	if err := r.DB(ctx).Where("user_id = ?", userID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// EnsureCart creates the user's cart if it does not exist yet and returns it.
// Concurrent callers converge on the same row through the user_id unique index.
func (r *Repository) EnsureCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	err := r.DB(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&models.Cart{UserID: userID}).Error
	if err != nil {
		return nil, err
	}
	return r.FindCart(ctx, userID)
}

// Items lists the cart lines in insertion order.
func (r *Repository) Items(ctx context.Context, cartID uuid.UUID) ([]itemRow, error) {
	var rows []itemRow
	err := r.DB(ctx).
		Table("cart_items AS ci").
		Select("ci.product_id, ci.quantity, p.name, p.price, p.image_url, p.stock_quantity").
		Joins("JOIN products p ON p.id = ci.product_id").
		Where("ci.cart_id = ?", cartID).
		Order("ci.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AddQuantity inserts the line or increments the stored quantity in a single
// statement.
func (r *Repository) AddQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	item := &models.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
	return r.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
				"updated_at": time.Now().UTC(),
			}),
		}).
		Create(item).Error
}

func (r *Repository) FindItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SetQuantity overwrites the quantity of an existing line and reports whether
// one matched.
func (r *Repository) SetQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) (bool, error) {
	return repo.Affected(r.DB(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Updates(map[string]any{"quantity": quantity, "updated_at": time.Now().UTC()}))
}

func (r *Repository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (bool, error) {
	return repo.Affected(r.DB(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{}))
}

// ClearItems empties the cart and returns the number of lines removed.
func (r *Repository) ClearItems(ctx context.Context, cartID uuid.UUID) (int64, error) {
	res := r.DB(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

func (r *Repository) AppendNotification(ctx context.Context, n *models.CartNotification) error {
	return r.DB(ctx).Create(n).Error
}
