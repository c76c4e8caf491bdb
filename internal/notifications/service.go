package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bsthardware/storefront-backend/pkg/db/models"
	pkgerrors "github.com/bsthardware/storefront-backend/pkg/errors"
)

// Service defines the admin view over add-to-cart activity.
type Service interface {
	List(ctx context.Context) ([]NotificationDTO, error)
	Summary(ctx context.Context) (*SummaryResult, error)
}

type service struct {
	repo Repository
}

// NotificationDTO mirrors one cart_notifications row.
type NotificationDTO struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Username    string          `json:"username"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Total       decimal.Decimal `json:"total"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SummaryResult keeps the latest notification per user and product.
type SummaryResult struct {
	Items      []NotificationDTO `json:"items"`
	GrandTotal decimal.Decimal   `json:"grand_total"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]NotificationDTO, error) {
	rows, err := s.repo.ListNewestFirst(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart notifications")
	}
	out := make([]NotificationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, fromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Summary(ctx context.Context) (*SummaryResult, error) {
	rows, err := s.repo.ListNewestFirst(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summarize cart notifications")
	}

	type key struct{ user, product uuid.UUID }
	seen := make(map[key]struct{}, len(rows))
	result := &SummaryResult{Items: []NotificationDTO{}, GrandTotal: decimal.Zero}
	for i := range rows {
		k := key{rows[i].UserID, rows[i].ProductID}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		result.Items = append(result.Items, fromModel(&rows[i]))
		result.GrandTotal = result.GrandTotal.Add(rows[i].Total)
	}
	return result, nil
}

func fromModel(n *models.CartNotification) NotificationDTO {
	return NotificationDTO{
		ID:          n.ID,
		UserID:      n.UserID,
		Username:    n.Username,
		ProductID:   n.ProductID,
		ProductName: n.ProductName,
		Price:       n.Price,
		Quantity:    n.Quantity,
		Total:       n.Total,
		CreatedAt:   n.CreatedAt,
	}
}
