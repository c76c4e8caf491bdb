package product

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bsthardware/storefront-backend/internal/repo"
	"github.com/bsthardware/storefront-backend/pkg/db/models"
)

// Repository persists catalog rows.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx binds the repository to an open transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// List returns products newest first, optionally narrowed to one category.
func (r *Repository) List(ctx context.Context, category string) ([]models.Product, error) {
	q := r.DB(ctx).Order("created_at DESC").Order("id")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var rows []models.Product
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.DB(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) Create(ctx context.Context, p *models.Product) error {
	return r.DB(ctx).Create(p).Error
}

// Save overwrites every column of an existing row.
func (r *Repository) Save(ctx context.Context, p *models.Product) error {
	return r.DB(ctx).Save(p).Error
}

// Delete reports whether a row was removed. Cart items and cart
// notifications cascade; canvass requests keep the row with a null product.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return repo.Affected(r.DB(ctx).Delete(&models.Product{}, "id = ?", id))
}

// Count is used by the seed command to skip populated catalogs.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB(ctx).Model(&models.Product{}).Count(&n).Error
	return n, err
}
