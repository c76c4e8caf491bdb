package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bsthardware/storefront-backend/pkg/db/models"
	"github.com/bsthardware/storefront-backend/pkg/enums"
	pkgerrors "github.com/bsthardware/storefront-backend/pkg/errors"
	"github.com/bsthardware/storefront-backend/pkg/events"
	"github.com/bsthardware/storefront-backend/pkg/logger"
	"github.com/bsthardware/storefront-backend/pkg/storage"
)

const (
	productNotFoundMessage = "Product not found."
	missingFieldsMessage   = "Please provide product name, price, and stock quantity."
	negativePriceMessage   = "Price must be a non-negative number."
	negativeStockMessage   = "Stock quantity must be a non-negative integer."
	priceTooHighMessage    = "Price must be less than 100000000."
	stockTooHighMessage    = "Stock quantity is too large."
)

// maxPrice is the largest value numeric(10,2) holds.
var maxPrice = decimal.RequireFromString("99999999.99")

// Service exposes catalog management operations.
type Service interface {
	List(ctx context.Context, input ListProductsInput) ([]ProductDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, input ProductInput) (*MutationResult, error)
	Update(ctx context.Context, id uuid.UUID, input ProductInput) (*MutationResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productRepository interface {
	List(ctx context.Context, category string) ([]models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Save(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type imageStore interface {
	SaveImage(ctx context.Context, originalName string, r io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}

// ServiceParams bundles the catalog dependencies. Images and Publisher are
// optional.
type ServiceParams struct {
	Repo      productRepository
	Images    imageStore
	Publisher events.Publisher
	Logger    *logger.Logger
}

type service struct {
	repo      productRepository
	images    imageStore
	publisher events.Publisher
	logg      *logger.Logger
}

// NewService constructs a product service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	publisher := params.Publisher
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &service{
		repo:      params.Repo,
		images:    params.Images,
		publisher: publisher,
		logg:      params.Logger,
	}, nil
}

func (s *service) List(ctx context.Context, input ListProductsInput) ([]ProductDTO, error) {
	rows, err := s.repo.List(ctx, strings.TrimSpace(input.Category))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(p), nil
}

func (s *service) Create(ctx context.Context, input ProductInput) (*MutationResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	imageURL, uploaded, err := s.resolveImage(ctx, input, nil)
	if err != nil {
		return nil, err
	}

	p := &models.Product{}
	applyInput(p, input, imageURL)
	if err := s.repo.Create(ctx, p); err != nil {
		s.discardImage(ctx, uploaded)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert product")
	}

	dto := FromModel(p)
	s.publish(ctx, enums.CatalogEventProductAdded, &p.ID, dto)
	s.publish(ctx, enums.CatalogEventProductsChanged, nil, nil)

	return &MutationResult{Message: "Product added successfully.", Product: dto}, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*MutationResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	previousImage := p.ImageURL

	imageURL, uploaded, err := s.resolveImage(ctx, input, previousImage)
	if err != nil {
		return nil, err
	}

	applyInput(p, input, imageURL)
	if err := s.repo.Save(ctx, p); err != nil {
		s.discardImage(ctx, uploaded)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	if uploaded != "" && previousImage != nil {
		s.discardImage(ctx, *previousImage)
	}

	dto := FromModel(p)
	s.publish(ctx, enums.CatalogEventProductUpdated, &p.ID, dto)
	s.publish(ctx, enums.CatalogEventProductsChanged, nil, nil)

	return &MutationResult{Message: "Product updated successfully.", Product: dto}, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
	}
	if p.ImageURL != nil {
		s.discardImage(ctx, *p.ImageURL)
	}

	s.publish(ctx, enums.CatalogEventProductDeleted, &id, nil)
	s.publish(ctx, enums.CatalogEventProductsChanged, nil, nil)
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return p, nil
}

// resolveImage picks the image for the row: a fresh upload wins, then an
// explicit image_url, then the current image. uploaded is set only when a
// new file was written.
func (s *service) resolveImage(ctx context.Context, input ProductInput, current *string) (*string, string, error) {
	if input.Image != nil {
		if s.images == nil {
			return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "image uploads are not enabled")
		}
		ref, err := s.images.SaveImage(ctx, input.Image.Filename, input.Image.Content)
		if err != nil {
			return nil, "", mapImageError(err)
		}
		return &ref, ref, nil
	}
	if input.ImageURL != nil {
		if url := strings.TrimSpace(*input.ImageURL); url != "" {
			return &url, "", nil
		}
	}
	return current, "", nil
}

func (s *service) discardImage(ctx context.Context, ref string) {
	if s.images == nil || ref == "" {
		return
	}
	if err := s.images.Delete(ctx, ref); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "image", ref), "product.image_cleanup_failed", err)
	}
}

func (s *service) publish(ctx context.Context, eventType enums.CatalogEventType, id *uuid.UUID, payload any) {
	evt, err := events.NewEvent(eventType, id, payload)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "product.event_encode_failed", err)
		}
		return
	}
	s.publisher.Publish(ctx, evt)
}

func validateInput(input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" || input.Price == nil || input.StockQuantity == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, missingFieldsMessage)
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, negativePriceMessage)
	}
	if input.Price.Round(2).GreaterThan(maxPrice) {
		return pkgerrors.New(pkgerrors.CodeValidation, priceTooHighMessage)
	}
	if *input.StockQuantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, negativeStockMessage)
	}
	if *input.StockQuantity > math.MaxInt32 {
		return pkgerrors.New(pkgerrors.CodeValidation, stockTooHighMessage)
	}
	return nil
}

func applyInput(p *models.Product, input ProductInput, imageURL *string) {
	p.Name = strings.TrimSpace(input.Name)
	p.Description = trimmedOrNil(input.Description)
	p.Price = input.Price.Round(2)
	p.StockQuantity = *input.StockQuantity
	p.Category = strings.TrimSpace(input.Category)
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	p.ImageURL = imageURL
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func mapImageError(err error) error {
	switch {
	case errors.Is(err, storage.ErrUnsupportedType), errors.Is(err, storage.ErrEmptyFile):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Only image files are allowed.")
	case errors.Is(err, storage.ErrTooLarge):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Image exceeds the upload size limit.")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store image")
}
