package admins

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsthardware/storefront-backend/pkg/db/dbtest"
	"github.com/bsthardware/storefront-backend/pkg/db/models"
)

func TestEnsureAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))

	created, err := repo.EnsureAdmin(ctx, &models.Admin{Username: "admin", Email: "admin@bsthardware.com", PasswordHash: "h1"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.EnsureAdmin(ctx, &models.Admin{Username: "admin", Email: "admin@bsthardware.com", PasswordHash: "h2"})
	require.NoError(t, err)
	assert.False(t, created)

	admin, err := repo.FindByEmail(ctx, "admin@bsthardware.com")
	require.NoError(t, err)
	assert.Equal(t, "h1", admin.PasswordHash)

	byName, err := repo.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, byName.ID)
}
