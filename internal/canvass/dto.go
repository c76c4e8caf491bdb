package canvass

import (
	"time"

	"github.com/google/uuid"

	"github.com/bsthardware/storefront-backend/pkg/db/models"
	"github.com/bsthardware/storefront-backend/pkg/enums"
)

// CreateRequest is the body of POST /canvass/request.
type CreateRequest struct {
	ProductID *uuid.UUID `json:"product_id"`
	Message   string     `json:"message" validate:"max=2000"`
}

// StatusRequest is the body of PUT /canvass/requests/{id}/status.
type StatusRequest struct {
	Status string `json:"status"`
}

// RequestDTO is a stored canvass request.
type RequestDTO struct {
	ID        uuid.UUID           `json:"id"`
	UserID    uuid.UUID           `json:"user_id"`
	ProductID *uuid.UUID          `json:"product_id"`
	Message   string              `json:"message"`
	Status    enums.CanvassStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// DetailDTO adds requester and product context for listings.
type DetailDTO struct {
	RequestDTO
	Username    string  `json:"username"`
	UserEmail   string  `json:"user_email"`
	ProductName *string `json:"product_name"`
}

type CreateResult struct {
	Message string      `json:"message"`
	Request *RequestDTO `json:"request"`
}

type StatusResult struct {
	Message string              `json:"message"`
	ID      uuid.UUID           `json:"id"`
	Status  enums.CanvassStatus `json:"status"`
}

func fromModel(m *models.CanvassRequest) *RequestDTO {
	return &RequestDTO{
		ID:        m.ID,
		UserID:    m.UserID,
		ProductID: m.ProductID,
		Message:   m.Message,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromRow(r detailRow) DetailDTO {
	return DetailDTO{
		RequestDTO: RequestDTO{
			ID:        r.ID,
			UserID:    r.UserID,
			ProductID: r.ProductID,
			Message:   r.Message,
			Status:    r.Status,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		},
		Username:    r.Username,
		UserEmail:   r.UserEmail,
		ProductName: r.ProductName,
	}
}
