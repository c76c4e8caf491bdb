package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bsthardware/storefront-backend/pkg/enums"
)

// CanvassRequest is a user inquiry, optionally about a product.
type CanvassRequest struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	ProductID *uuid.UUID          `gorm:"column:product_id;type:uuid"`
	Message   string              `gorm:"column:message;type:text;not null"`
	Status    enums.CanvassStatus `gorm:"column:status;type:varchar(20);not null;default:'pending';check:chk_canvass_requests_status,status IN ('pending','responded','closed')"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *CanvassRequest) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = enums.CanvassStatusPending
	}
	return nil
}
