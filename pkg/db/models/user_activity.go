package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bsthardware/storefront-backend/pkg/enums"
)

// UserActivity records a successful login for either identity space.
type UserActivity struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	Username  string     `gorm:"column:username;type:varchar(100);not null"`
	Role      enums.Role `gorm:"column:role;type:varchar(10);not null"`
	IPAddress *string    `gorm:"column:ip_address;type:varchar(64)"`
	LoginTime time.Time  `gorm:"column:login_time;autoCreateTime"`
}

func (UserActivity) TableName() string {
	return "user_activity"
}

func (a *UserActivity) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
