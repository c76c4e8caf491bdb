// Package seed loads the bootstrap admin account and the starter catalog.
package seed

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/bsthardware/storefront-backend/internal/admins"
	product "github.com/bsthardware/storefront-backend/internal/products"
	"github.com/bsthardware/storefront-backend/pkg/config"
	"github.com/bsthardware/storefront-backend/pkg/db/models"
	"github.com/bsthardware/storefront-backend/pkg/logger"
	"github.com/bsthardware/storefront-backend/pkg/security"
)

const generatedPasswordLength = 16

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
}

// Params wires the seeder.
type Params struct {
	DB     *gorm.DB
	Tx     txRunner
	Hasher passwordHasher
	Config config.SeedConfig
	Logger *logger.Logger
}

// Result reports what a run changed. GeneratedPassword is set only when the
// admin was created without a configured password.
type Result struct {
	AdminCreated      bool
	GeneratedPassword string
	ProductsInserted  int
}

// Run is idempotent: an existing admin is left untouched and products are
// inserted only into an empty catalog.
func Run(ctx context.Context, p Params) (Result, error) {
	var res Result
	if p.DB == nil || p.Tx == nil || p.Hasher == nil {
		return res, fmt.Errorf("db, tx runner and hasher are required")
	}

	created, generated, err := ensureAdmin(ctx, p)
	if err != nil {
		return res, err
	}
	res.AdminCreated = created
	res.GeneratedPassword = generated

	if p.Config.Products {
		inserted, err := seedCatalog(ctx, p.Tx)
		if err != nil {
			return res, err
		}
		res.ProductsInserted = inserted
	}

	if p.Logger != nil {
		p.Logger.Info(p.Logger.WithFields(ctx, map[string]any{
			"admin_created":     res.AdminCreated,
			"products_inserted": res.ProductsInserted,
		}), "seed completed")
	}
	return res, nil
}

func ensureAdmin(ctx context.Context, p Params) (bool, string, error) {
	username := strings.TrimSpace(p.Config.AdminUsername)
	email := strings.ToLower(strings.TrimSpace(p.Config.AdminEmail))
	if username == "" || email == "" {
		return false, "", fmt.Errorf("admin username and email are required")
	}

	password := p.Config.AdminPassword
	generated := ""
	if password == "" {
		var err error
		if password, err = security.GenerateTempPassword(generatedPasswordLength); err != nil {
			return false, "", fmt.Errorf("generate admin password: %w", err)
		}
		generated = password
	}

	hash, err := p.Hasher.Hash(password)
	if err != nil {
		return false, "", fmt.Errorf("hash admin password: %w", err)
	}

	created, err := admins.NewRepository(p.DB).EnsureAdmin(ctx, &models.Admin{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return false, "", fmt.Errorf("ensure admin: %w", err)
	}
	if !created {
		generated = ""
	}
	return created, generated, nil
}

func seedCatalog(ctx context.Context, tx txRunner) (int, error) {
	inserted := 0
	err := tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := product.NewRepository(tx)
		count, err := repo.Count(ctx)
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		if count > 0 {
			return nil
		}
		for _, item := range Catalog {
			image := item.ImageURL
			if err := repo.Create(ctx, &models.Product{
				Name:     item.Name,
				Price:    item.price(),
				Category: item.Category,
				ImageURL: &image,
			}); err != nil {
				return fmt.Errorf("insert %s: %w", item.Name, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
