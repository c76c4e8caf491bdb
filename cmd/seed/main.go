package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/bsthardware/storefront-backend/internal/seed"
	"github.com/bsthardware/storefront-backend/pkg/config"
	"github.com/bsthardware/storefront-backend/pkg/db"
	"github.com/bsthardware/storefront-backend/pkg/logger"
	"github.com/bsthardware/storefront-backend/pkg/migrate"
	"github.com/bsthardware/storefront-backend/pkg/security"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithField(ctx, "env", cfg.App.Env)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()
	requireResource(ctx, logg, "database", dbClient.Ping(ctx))

	requireResource(ctx, logg, "schema", migrate.MaybeRun(ctx, cfg, logg, dbClient))

	res, err := seed.Run(ctx, seed.Params{
		DB:     dbClient.DB(),
		Tx:     dbClient,
		Hasher: security.NewHasher(cfg.Password),
		Config: cfg.Seed,
		Logger: logg,
	})
	requireResource(ctx, logg, "seed", err)

	if res.GeneratedPassword != "" {
		fmt.Printf("created admin %q with generated password: %s\n", cfg.Seed.AdminUsername, res.GeneratedPassword)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
