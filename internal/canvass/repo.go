package canvass

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bsthardware/storefront-backend/internal/repo"
	"github.com/bsthardware/storefront-backend/pkg/db/models"
	"github.com/bsthardware/storefront-backend/pkg/enums"
)

// Repository persists canvass requests.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

type detailRow struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	ProductID   *uuid.UUID
	Message     string
	Status      enums.CanvassStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Username    string
	UserEmail   string
	ProductName *string
}

func (r *Repository) Create(ctx context.Context, req *models.CanvassRequest) error {
	return r.DB(ctx).Create(req).Error
}

func (r *Repository) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.ExistsByID(ctx, &models.User{}, id)
}

func (r *Repository) ProductExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.ExistsByID(ctx, &models.Product{}, id)
}


// List joins every request with its requester and product, newest first.
func (r *Repository) List(ctx context.Context) ([]detailRow, error) {
	return r.list(ctx, nil)
}

// ListByUser narrows List to one requester.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]detailRow, error) {
	return r.list(ctx, &userID)
}

func (r *Repository) list(ctx context.Context, userID *uuid.UUID) ([]detailRow, error) {
	q := r.DB(ctx).
		Table("canvass_requests AS cr").
		Select(`cr.id, cr.user_id, cr.product_id, cr.message, cr.status, cr.created_at, cr.updated_at,
			u.username AS username, u.email AS user_email, p.name AS product_name`).
		Joins("JOIN users u ON u.id = cr.user_id").
		Joins("LEFT JOIN products p ON p.id = cr.product_id").
		Order("cr.created_at DESC")
	if userID != nil {
		q = q.Where("cr.user_id = ?", *userID)
	}
	var rows []detailRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStatus reports whether a row matched id.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.CanvassStatus) (bool, error) {
	return repo.Affected(r.DB(ctx).
		Model(&models.CanvassRequest{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()}))
}
