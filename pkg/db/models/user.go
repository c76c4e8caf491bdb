package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a storefront customer. Deleting a user cascades to their cart,
// cart notifications and canvass requests.
type User struct {
	ID                uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Username          string             `gorm:"column:username;type:varchar(100);not null;uniqueIndex"`
	Email             string             `gorm:"column:email;type:varchar(255);not null;uniqueIndex"`
	PasswordHash      string             `gorm:"column:password_hash;not null"`
	Cart              *Cart              `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CartNotifications []CartNotification `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CanvassRequests   []CanvassRequest   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
