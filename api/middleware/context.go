package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/bsthardware/storefront-backend/pkg/enums"
)

type identityKey struct{}

// identity is what Auth learned from the bearer token.
type identity struct {
	subject string
	role    enums.Role
	tokenID string
}

func identityFrom(ctx context.Context) identity {
	if ctx == nil {
		return identity{}
	}
	id, _ := ctx.Value(identityKey{}).(identity)
	return id
}

// UserIDFromContext returns the token subject. For admins this is the admin id.
func UserIDFromContext(ctx context.Context) string {
	return identityFrom(ctx).subject
}

// SubjectFromContext parses the authenticated id. ok is false for anonymous
// requests.
func SubjectFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(identityFrom(ctx).subject)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func RoleFromContext(ctx context.Context) string {
	return string(identityFrom(ctx).role)
}

// TokenIDFromContext returns the jti Logout revokes.
func TokenIDFromContext(ctx context.Context) string {
	return identityFrom(ctx).tokenID
}

// WithIdentity seeds the context the same way Auth does. Used by tests and
// handlers mounted outside the gate.
func WithIdentity(ctx context.Context, userID string, role enums.Role) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	id := identityFrom(ctx)
	id.subject, id.role = userID, role
	return context.WithValue(ctx, identityKey{}, id)
}

func withTokenID(ctx context.Context, tokenID string) context.Context {
	id := identityFrom(ctx)
	id.tokenID = tokenID
	return context.WithValue(ctx, identityKey{}, id)
}
