package product

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bsthardware/storefront-backend/pkg/db/models"
)

// DefaultCategory is stored when a product is saved without one.
const DefaultCategory = "Uncategorized"

// ProductDTO is the public product shape. Price is serialized as a decimal string.
type ProductDTO struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   *string         `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	Category      string          `json:"category"`
	ImageURL      *string         `json:"image_url"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductInput carries a full create or replace. Nil Price or StockQuantity
// means the field was not supplied.
type ProductInput struct {
	Name          string
	Description   *string
	Price         *decimal.Decimal
	StockQuantity *int
	Category      string
	ImageURL      *string
	Image         *ImageUpload
}

// ImageUpload is a multipart file handed to the image store.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// ListProductsInput filters the catalog listing.
type ListProductsInput struct {
	Category string
}

// MutationResult is returned by create and update.
type MutationResult struct {
	Message string      `json:"message"`
	Product *ProductDTO `json:"product"`
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		Category:      p.Category,
		ImageURL:      p.ImageURL,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
