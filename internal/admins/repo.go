package admins

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bsthardware/storefront-backend/internal/repo"
	"github.com/bsthardware/storefront-backend/pkg/db/models"
)

// Repository reads and seeds the admin identity space.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.DB(ctx).Where("username = ?", username).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.DB(ctx).Where("email = ?", email).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.DB(ctx).Model(&models.Admin{}).Where("id = ?", id).Update("password_hash", hash).Error
}

// EnsureAdmin inserts the admin unless the username or email already exists.
// created is false when an existing row was kept.
func (r *Repository) EnsureAdmin(ctx context.Context, admin *models.Admin) (bool, error) {
	return repo.Affected(r.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(admin))
}
