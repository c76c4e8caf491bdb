package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/bsthardware/storefront-backend/api/controllers"
	"github.com/bsthardware/storefront-backend/api/routes"
	"github.com/bsthardware/storefront-backend/internal/activity"
	"github.com/bsthardware/storefront-backend/internal/admins"
	"github.com/bsthardware/storefront-backend/internal/auth"
	"github.com/bsthardware/storefront-backend/internal/canvass"
	"github.com/bsthardware/storefront-backend/internal/cart"
	"github.com/bsthardware/storefront-backend/internal/notifications"
	product "github.com/bsthardware/storefront-backend/internal/products"
	"github.com/bsthardware/storefront-backend/internal/users"
	"github.com/bsthardware/storefront-backend/pkg/auth/session"
	"github.com/bsthardware/storefront-backend/pkg/config"
	"github.com/bsthardware/storefront-backend/pkg/db"
	"github.com/bsthardware/storefront-backend/pkg/events"
	"github.com/bsthardware/storefront-backend/pkg/instance"
	"github.com/bsthardware/storefront-backend/pkg/logger"
	"github.com/bsthardware/storefront-backend/pkg/metrics"
	"github.com/bsthardware/storefront-backend/pkg/migrate"
	"github.com/bsthardware/storefront-backend/pkg/redis"
	"github.com/bsthardware/storefront-backend/pkg/security"
	"github.com/bsthardware/storefront-backend/pkg/storage"
)

const startupPingTimeout = 5 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	dbReady, err := pingDB(ctx, cfg, logg, dbClient)
	if err != nil {
		return err
	}
	if dbReady {
		if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
			return err
		}
	}

	readiness := map[string]controllers.Pinger{"database": dbClient}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		readiness["redis"] = redisClient
	} else {
		logg.Warn(ctx, "redis not configured; sessions, rate limits and cross-instance events are disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if sqlDB, err := dbClient.SQLDB(); err == nil {
		registry.MustRegister(collectors.NewDBStatsCollector(sqlDB, "storefront"))
	}
	httpMetrics := metrics.NewHTTPMetrics(registry)
	storeMetrics := metrics.NewStoreMetrics(registry)

	hub := events.NewHub(cfg.Events.SubscriberBuffer, storeMetrics)
	defer hub.Close()

	group, groupCtx := errgroup.WithContext(ctx)

	var publisher events.Publisher = hub
	deps := routes.Dependencies{
		Config:    cfg,
		Logger:    logg,
		Readiness: readiness,
		Metrics:   httpMetrics,
		Gatherer:  registry,
		Catalog:   hub,
	}

	authParams := auth.ServiceParams{
		UserRepo:  users.NewRepository(dbClient.DB()),
		AdminRepo: admins.NewRepository(dbClient.DB()),
		Activity:  activity.NewRepository(dbClient.DB()),
		Hasher:    security.NewHasher(cfg.Password),
		JWTConfig: cfg.JWT,
		Logger:    logg,
	}
	usersParams := users.ServiceParams{
		Repo:   users.NewRepository(dbClient.DB()),
		Logger: logg,
	}

	if redisClient != nil {
		sessionManager, err := session.NewManager(redisClient, cfg.JWT.AccessTTL())
		if err != nil {
			return err
		}
		authParams.SessionManager = sessionManager
		usersParams.Sessions = sessionManager
		deps.Sessions = sessionManager
		deps.RateLimits = redisClient

		relay, err := events.NewRedisRelay(redisClient, cfg.Events.RedisChannel, hub, logg)
		if err != nil {
			return err
		}
		publisher = relay
		group.Go(func() error {
			return relay.Run(groupCtx)
		})
	}

	images, err := storage.NewLocalStore(cfg.Uploads.Dir, cfg.Uploads.MaxBytes())
	if err != nil {
		return err
	}

	if deps.Auth, err = auth.NewService(authParams); err != nil {
		return err
	}
	if deps.Users, err = users.NewService(usersParams); err != nil {
		return err
	}
	if deps.Products, err = product.NewService(product.ServiceParams{
		Repo:      product.NewRepository(dbClient.DB()),
		Images:    images,
		Publisher: publisher,
		Logger:    logg,
	}); err != nil {
		return err
	}
	if deps.Cart, err = cart.NewService(cart.ServiceParams{
		Repo:    cart.NewRepository(dbClient.DB()),
		Tx:      dbClient,
		Metrics: storeMetrics,
		Logger:  logg,
	}); err != nil {
		return err
	}
	if deps.Notifications, err = notifications.NewService(notifications.NewRepository(dbClient.DB())); err != nil {
		return err
	}
	if deps.Canvass, err = canvass.NewService(canvass.NewRepository(dbClient.DB())); err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	group.Go(func() error {
		logg.Info(logCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logg.Info(logCtx, "api server stopped")
	return nil
}

// pingDB fails only when the database is required. Otherwise the API starts
// and readiness keeps reporting the outage.
func pingDB(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) (bool, error) {
	pingCtx, cancel := context.WithTimeout(ctx, startupPingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx); err != nil {
		if cfg.DB.Required {
			return false, fmt.Errorf("database ping: %w", err)
		}
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "database unreachable; serving without it")
		return false, nil
	}
	return true, nil
}
