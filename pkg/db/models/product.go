package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a catalog listing.
type Product struct {
	ID                uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Name              string             `gorm:"column:name;type:varchar(255);not null"`
	Description       *string            `gorm:"column:description;type:text"`
	Price             decimal.Decimal    `gorm:"column:price;type:numeric(10,2);not null"`
	StockQuantity     int                `gorm:"column:stock_quantity;not null;default:0"`
	Category          string             `gorm:"column:category;type:varchar(100);not null;index"`
	ImageURL          *string            `gorm:"column:image_url;type:varchar(255)"`
	CartItems         []CartItem         `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CartNotifications []CartNotification `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CanvassRequests   []CanvassRequest   `gorm:"foreignKey:ProductID;constraint:OnDelete:SET NULL"`
	CreatedAt         time.Time          `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt         time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
