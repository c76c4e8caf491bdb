package canvass

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bsthardware/storefront-backend/pkg/db/models"
	"github.com/bsthardware/storefront-backend/pkg/enums"
	pkgerrors "github.com/bsthardware/storefront-backend/pkg/errors"
)

const (
	emptyMessage         = "Canvass message cannot be empty."
	invalidStatusMessage = "Invalid status provided."
	requestNotFound      = "Canvass request not found."
	productNotFound      = "Product not found."
	userNotFound         = "User not found"
)

// Service handles customer inquiries and their admin triage.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateRequest) (*CreateResult, error)
	List(ctx context.Context) ([]DetailDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]DetailDTO, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*StatusResult, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("canvass repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateRequest) (*CreateResult, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, emptyMessage)
	}

	ok, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, userNotFound)
	}

	productID := input.ProductID
	if productID != nil && *productID == uuid.Nil {
		productID = nil
	}
	if productID != nil {
		ok, err := s.repo.ProductExists(ctx, *productID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check product")
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, productNotFound)
		}
	}

	req := &models.CanvassRequest{
		UserID:    userID,
		ProductID: productID,
		Message:   message,
		Status:    enums.CanvassStatusPending,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert canvass request")
	}
	return &CreateResult{Message: "Canvass request submitted successfully.", Request: fromModel(req)}, nil
}

func (s *service) List(ctx context.Context) ([]DetailDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list canvass requests")
	}
	return toDetails(rows), nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]DetailDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list own canvass requests")
	}
	return toDetails(rows), nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, raw string) (*StatusResult, error) {
	status, err := enums.ParseCanvassStatus(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, invalidStatusMessage)
	}
	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update canvass status")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, requestNotFound)
	}
	return &StatusResult{Message: "Canvass request status updated successfully.", ID: id, Status: status}, nil
}

func toDetails(rows []detailRow) []DetailDTO {
	out := make([]DetailDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out
}
