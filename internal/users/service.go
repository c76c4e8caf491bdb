package users

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bsthardware/storefront-backend/pkg/db/models"
	pkgerrors "github.com/bsthardware/storefront-backend/pkg/errors"
	"github.com/bsthardware/storefront-backend/pkg/logger"
)

const userNotFoundMessage = "User not found"

// Service is the admin surface over customer accounts.
type Service interface {
	List(ctx context.Context) ([]UserDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository interface {
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// sessionRevoker drops every live token of a subject.
type sessionRevoker interface {
	RevokeSubject(ctx context.Context, subjectID string) error
}

type ServiceParams struct {
	Repo     repository
	Sessions sessionRevoker
	Logger   *logger.Logger
}

type service struct {
	repo     repository
	sessions sessionRevoker
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	return &service{
		repo:     params.Repo,
		sessions: params.Sessions,
		logg:     params.Logger,
	}, nil
}

func (s *service) List(ctx context.Context) ([]UserDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, userNotFoundMessage)
	}

	if s.sessions != nil {
		if err := s.sessions.RevokeSubject(ctx, id.String()); err != nil && s.logg != nil {
			s.logg.Error(s.logg.WithUserID(ctx, id.String()), "users.revoke_sessions_failed", err)
		}
	}
	return nil
}
