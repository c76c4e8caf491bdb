// Package activity keeps the login audit trail.
package activity

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bsthardware/storefront-backend/internal/repo"
	"github.com/bsthardware/storefront-backend/pkg/db/models"
	"github.com/bsthardware/storefront-backend/pkg/enums"
)

// LoginEntry is one successful login.
type LoginEntry struct {
	SubjectID uuid.UUID
	Username  string
	Role      enums.Role
	IP        string
}

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// RecordLogin appends a user_activity row.
func (r *Repository) RecordLogin(ctx context.Context, entry LoginEntry) error {
	row := &models.UserActivity{
		UserID:   entry.SubjectID,
		Username: entry.Username,
		Role:     entry.Role,
	}
	if ip := strings.TrimSpace(entry.IP); ip != "" {
		row.IPAddress = &ip
	}
	return r.DB(ctx).Create(row).Error
}

// ListForSubject returns the activity of one account, newest first.
func (r *Repository) ListForSubject(ctx context.Context, subjectID uuid.UUID) ([]models.UserActivity, error) {
	var rows []models.UserActivity
	err := r.DB(ctx).
		Where("user_id = ?", subjectID).
		Order("login_time DESC").
		Find(&rows).Error
	return rows, err
}
