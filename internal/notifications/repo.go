package notifications

import (
	"context"

	"gorm.io/gorm"

	"github.com/bsthardware/storefront-backend/internal/repo"
	"github.com/bsthardware/storefront-backend/pkg/db/models"
)

// Repository reads the cart notification log. Rows are written by the cart
// service inside its add transaction and never updated.
type Repository interface {
	ListNewestFirst(ctx context.Context) ([]models.CartNotification, error)
}

type gormRepository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{Base: repo.NewBase(db)}
}

// ListNewestFirst breaks created_at ties by id so pages are stable.
func (r *gormRepository) ListNewestFirst(ctx context.Context) ([]models.CartNotification, error) {
	var rows []models.CartNotification
	err := r.DB(ctx).Order("created_at DESC").Order("id").Find(&rows).Error
	return rows, err
}
