package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"capristore/internal/backend"
	"capristore/internal/cart"
	"capristore/internal/config"
	"capristore/internal/handlers"
	"capristore/internal/metrics"
	"capristore/internal/middleware"
	"capristore/internal/models"
	"capristore/internal/repositories"
	"capristore/internal/services"
	"capristore/pkg/cache"
	"capristore/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 10 * time.Second

// App is the assembled gateway: the Fiber app plus the resources it owns.
type App struct {
	Fiber       *fiber.App
	Sessions    *cart.Sessions
	AuthService *services.AuthService
	Registry    *prometheus.Registry

	logger    *zap.Logger
	db        *gorm.DB
	mq        *rabbitmq.Client
	feedCache *cache.RedisFeedCache
	cancel    context.CancelFunc
}

type repositorySet struct {
	products    repositories.ProductRepository
	orders      repositories.OrderRepository
	auth        repositories.AuthRepository
	reports     repositories.ReportRepository
	integration repositories.IntegrationRepository
}

// NewApp wires configuration, repositories, services and routes. Background
// workers run until Shutdown is called.
func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		Registry: prometheus.NewRegistry(),
		logger:   logger,
		cancel:   cancel,
	}
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(a.Registry)

	db, err := openDatabase(cfg.Database, cfg.IsDevelopment())
	if err != nil {
		cancel()
		return nil, err
	}
	a.db = db

	repos, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, multierr.Append(err, a.Shutdown())
	}

	var publisher services.CheckoutPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, logger)
		if err != nil {
			logger.Warn("rabbitmq unavailable, checkout events disabled", zap.Error(err))
		} else {
			a.mq = mq
			publisher = mq
			if err := mq.ConsumeCheckoutEvents(ctx, auditCheckout(logger)); err != nil {
				logger.Warn("failed to start checkout audit consumer", zap.Error(err))
			}
		}
	}

	var feedCache cache.FeedCache
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisFeedCache(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, external feed will not be cached", zap.Error(err))
		} else {
			a.feedCache = redisCache
			feedCache = redisCache
		}
	}

	a.Sessions = cart.NewSessions(cfg.Cart.SessionTTL, logger, cart.WithOnCreate(func(_ string, store *cart.Store) {
		store.Subscribe(func(cart.Summary) { m.IncCartUpdate() })
	}))
	go a.Sessions.RunSweeper(ctx, cfg.Cart.SweepInterval)
	go trackSessions(ctx, a.Sessions, m, cfg.Cart.SweepInterval)

	productService := services.NewProductService(repos.products, cfg.LowStockThreshold)
	cartService := services.NewCartService(a.Sessions, repos.products)
	checkoutService := services.NewCheckoutService(a.Sessions, repos.orders, repositories.NewGORMReceiptRepository(db), publisher, m, logger)
	orderService := services.NewOrderService(repos.orders)
	a.AuthService = services.NewAuthService(repos.auth, a.Sessions, cfg.JWTSecret)
	reportService := services.NewReportService(repos.reports)
	integrationService := services.NewIntegrationService(repos.integration, feedCache, cfg.Backend.ExternalFeedTTL, m, logger)

	authHandler := handlers.NewAuthHandler(a.AuthService, logger)
	productHandler := handlers.NewProductHandler(productService, logger)
	cartHandler := handlers.NewCartHandler(ctx, cartService, logger)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, logger)
	orderHandler := handlers.NewOrderHandler(orderService, logger)
	reportHandler := handlers.NewReportHandler(reportService, logger)
	integrationHandler := handlers.NewIntegrationHandler(integrationService, logger)

	app := fiber.New(fiber.Config{
		AppName:      "capristore",
		ErrorHandler: errorHandler(logger),
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(fiberlogger.New())
	app.Use(m.Middleware())

	app.Get("/health", a.handleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})))

	apiV1 := app.Group("/api/v1")
	requireAuth := middleware.AuthRequired(a.AuthService, logger)

	// Public routes must be registered before the authenticated group.
	authRoutes := apiV1.Group("/auth", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	}))
	authHandler.RegisterRoutes(authRoutes, requireAuth)
	productHandler.RegisterRoutes(apiV1)
	orderHandler.RegisterPublicRoutes(apiV1)

	protected := apiV1.Group("", requireAuth)
	cartHandler.RegisterRoutes(protected)
	checkoutHandler.RegisterRoutes(protected)
	orderHandler.RegisterRoutes(protected)

	admin := protected.Group("/admin", middleware.AdminOnly())
	productHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)
	reportHandler.RegisterAdminRoutes(admin)
	integrationHandler.RegisterAdminRoutes(admin)

	a.Fiber = app
	return a, nil
}

// Shutdown stops background workers and the HTTP server, then releases
// every connection. All close errors are reported.
func (a *App) Shutdown() error {
	// Cancelling first ends the cart event streams, which would otherwise keep
	// their connections open.
	a.cancel()

	var err error
	if a.Fiber != nil {
		err = multierr.Append(err, a.Fiber.ShutdownWithTimeout(shutdownTimeout))
	}
	if a.mq != nil {
		err = multierr.Append(err, a.mq.Close())
	}
	if a.feedCache != nil {
		err = multierr.Append(err, a.feedCache.Close())
	}
	if a.db != nil {
		if sqlDB, dbErr := a.db.DB(); dbErr == nil {
			err = multierr.Append(err, sqlDB.Close())
		}
	}
	return err
}

func (a *App) handleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	checks := fiber.Map{"rabbitmq": "disabled", "redis": "disabled"}
	healthy := true

	if sqlDB, err := a.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "unreachable"
		healthy = false
	} else {
		checks["database"] = "connected"
	}
	if a.mq != nil {
		checks["rabbitmq"] = "connected"
	}
	if a.feedCache != nil {
		if err := a.feedCache.Ping(ctx); err != nil {
			checks["redis"] = "unreachable"
			healthy = false
		} else {
			checks["redis"] = "connected"
		}
	}

	status, code := "healthy", fiber.StatusOK
	if !healthy {
		status, code = "degraded", fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"time":     time.Now().Format(time.RFC3339),
		"sessions": a.Sessions.Len(),
		"checks":   checks,
	})
}

func buildRepositories(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*repositorySet, error) {
	if cfg.Backend.URL != "" {
		client := backend.NewClient(backend.Config{BaseURL: cfg.Backend.URL, Timeout: cfg.Backend.Timeout}, logger)
		logger.Info("using shop backend", zap.String("url", cfg.Backend.URL))
		return &repositorySet{
			products:    repositories.NewRESTProductRepository(client),
			orders:      repositories.NewRESTOrderRepository(client),
			auth:        repositories.NewRESTAuthRepository(client),
			reports:     repositories.NewRESTReportRepository(client),
			integration: repositories.NewRESTIntegrationRepository(client, cfg.Backend.ExternalFeedURL),
		}, nil
	}

	logger.Warn("BACKEND_URL is empty, running on in-memory repositories")
	products := repositories.NewMockProductRepository()
	if err := seedCatalog(ctx, products); err != nil {
		return nil, err
	}
	auth := repositories.NewMockAuthRepository(cfg.JWTSecret)
	if err := auth.SeedUser("Administrador", cfg.DevAdminEmail, cfg.DevAdminPassword, models.RoleAdmin); err != nil {
		return nil, fmt.Errorf("failed to seed admin account: %w", err)
	}
	return &repositorySet{
		products:    products,
		orders:      repositories.NewMockOrderRepository(products),
		auth:        auth,
		reports:     repositories.NewMockReportRepository(),
		integration: repositories.NewMockIntegrationRepository(products),
	}, nil
}

func openDatabase(cfg config.DatabaseConfig, verbose bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		dialector = sqlite.Open(cfg.DSN)
	}

	level := gormlogger.Warn
	if !verbose {
		level = gormlogger.Error
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(level)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Driver == "sqlite" && strings.Contains(cfg.DSN, ":memory:") {
		// Every connection to an in-memory database would see its own empty copy.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&models.Receipt{}, &models.ReceiptLine{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return db, nil
}

// auditCheckout logs every completed checkout read back from the queue.
func auditCheckout(logger *zap.Logger) func(rabbitmq.CheckoutCompleted) error {
	return func(event rabbitmq.CheckoutCompleted) error {
		logger.Info("checkout audited",
			zap.String("order_number", event.OrderNumber),
			zap.String("user", event.UserKey),
			zap.String("payment_method", event.PaymentMethod),
			zap.Int("total_items", event.TotalItems),
			zap.String("total_price", event.TotalPrice),
			zap.Time("occurred_at", event.OccurredAt),
		)
		return nil
	}
}

// trackSessions publishes the number of open cart sessions every interval.
func trackSessions(ctx context.Context, sessions *cart.Sessions, m *metrics.Metrics, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		m.SetCartSessions(sessions.Len())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		if fe, ok := err.(*fiber.Error); ok {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error("unhandled request error", zap.String("path", c.Path()), zap.Error(err))
		}
		return c.Status(code).JSON(fiber.Map{
			"message": err.Error(),
		})
	}
}
