package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bsthardware/storefront-backend/api/controllers"
	"github.com/bsthardware/storefront-backend/api/middleware"
	"github.com/bsthardware/storefront-backend/internal/auth"
	"github.com/bsthardware/storefront-backend/internal/canvass"
	"github.com/bsthardware/storefront-backend/internal/cart"
	"github.com/bsthardware/storefront-backend/internal/notifications"
	product "github.com/bsthardware/storefront-backend/internal/products"
	"github.com/bsthardware/storefront-backend/internal/users"
	"github.com/bsthardware/storefront-backend/pkg/auth/session"
	"github.com/bsthardware/storefront-backend/pkg/config"
	"github.com/bsthardware/storefront-backend/pkg/enums"
	"github.com/bsthardware/storefront-backend/pkg/events"
	"github.com/bsthardware/storefront-backend/pkg/logger"
	"github.com/bsthardware/storefront-backend/pkg/storage"
)

// Dependencies is everything the HTTP surface needs. RateLimits, Sessions,
// Metrics, Gatherer and Catalog may be nil.
type Dependencies struct {
	Config *config.Config
	Logger *logger.Logger

	Readiness  map[string]controllers.Pinger
	RateLimits middleware.RateLimiter
	Sessions   session.AccessSessionChecker
	Metrics    middleware.RequestObserver
	Gatherer   prometheus.Gatherer
	Catalog    events.Subscriber

	Auth          auth.Service
	Products      product.Service
	Cart          cart.Service
	Users         users.Service
	Notifications notifications.Service
	Canvass       canvass.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg, logg := deps.Config, deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.Metrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(logg, deps.Readiness))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	if cfg.Uploads.Dir != "" {
		files := http.StripPrefix(storage.PublicPrefix, http.FileServer(http.Dir(cfg.Uploads.Dir)))
		r.Method(http.MethodGet, storage.PublicPrefix+"*", files)
	}

	if deps.Catalog != nil {
		r.Get("/ws/catalog", controllers.CatalogStream(deps.Catalog, cfg.CORS.AllowedOrigins, logg))
	}

	// The same surface is served at the root and under /api for clients
	// built against the older path layout.
	r.Group(func(r chi.Router) { mountAPI(r, deps) })
	r.Route("/api", func(r chi.Router) { mountAPI(r, deps) })

	return r
}

func mountAPI(r chi.Router, deps Dependencies) {
	cfg, logg := deps.Config, deps.Logger

	loginLimit := middleware.AuthRateLimit(middleware.LoginRateLimitPolicy(cfg.AuthRateLimit), deps.RateLimits, logg)
	signupLimit := middleware.AuthRateLimit(middleware.SignupRateLimitPolicy(cfg.AuthRateLimit), deps.RateLimits, logg)

	authGate := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	userOnly := middleware.RequireRoles(logg, enums.RoleUser)
	adminOnly := middleware.RequireRoles(logg, enums.RoleAdmin)
	maxUpload := cfg.Uploads.MaxBytes()

	signup := controllers.AuthSignup(deps.Auth, logg)
	login := controllers.AuthLogin(deps.Auth, logg)
	adminLogin := controllers.AuthAdminLogin(deps.Auth, logg)

	r.With(signupLimit).Post("/signup", signup)
	r.With(loginLimit).Post("/login", login)
	r.With(loginLimit).Post("/admin-login", adminLogin)

	r.Route("/auth", func(r chi.Router) {
		r.With(signupLimit).Post("/signup", signup)
		r.With(loginLimit).Post("/login", login)
		r.With(loginLimit).Post("/admin-login", adminLogin)
		r.With(authGate).Post("/logout", controllers.AuthLogout(deps.Auth, logg))
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", controllers.ProductsList(deps.Products, logg))
		r.Get("/{id}", controllers.ProductsGet(deps.Products, logg))

		r.Group(func(r chi.Router) {
			r.Use(authGate, adminOnly)
			r.Post("/", controllers.ProductsCreate(deps.Products, maxUpload, logg))
			r.Put("/{id}", controllers.ProductsUpdate(deps.Products, maxUpload, logg))
			r.Delete("/{id}", controllers.ProductsDelete(deps.Products, logg))
		})
	})

	r.Route("/cart", func(r chi.Router) {
		r.Use(authGate, userOnly)
		r.Get("/", controllers.CartGet(deps.Cart, logg))
		r.Post("/add", controllers.CartAdd(deps.Cart, logg))
		r.Put("/update", controllers.CartUpdate(deps.Cart, logg))
		r.Delete("/remove/{productId}", controllers.CartRemove(deps.Cart, logg))
		r.Post("/checkout", controllers.CartCheckout(deps.Cart, logg))
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(authGate, adminOnly)
		r.Get("/", controllers.UsersList(deps.Users, logg))
		r.Delete("/{id}", controllers.UsersDelete(deps.Users, logg))
	})

	r.Route("/cart-notifications", func(r chi.Router) {
		r.Use(authGate, adminOnly)
		r.Get("/", controllers.CartNotificationsList(deps.Notifications, logg))
		r.Get("/summary", controllers.CartNotificationsSummary(deps.Notifications, logg))
	})

	r.Route("/canvass", func(r chi.Router) {
		r.Use(authGate)
		r.With(userOnly).Post("/request", controllers.CanvassCreate(deps.Canvass, logg))
		r.With(userOnly).Get("/my-requests", controllers.CanvassListMine(deps.Canvass, logg))
		r.With(adminOnly).Get("/requests", controllers.CanvassList(deps.Canvass, logg))
		r.With(adminOnly).Put("/requests/{id}/status", controllers.CanvassUpdateStatus(deps.Canvass, logg))
	})
}
