package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"artmarket/internal/config"
	"artmarket/internal/database"
	"artmarket/internal/database/migration"
	handlers "artmarket/internal/http/handler"
	"artmarket/internal/http/middleware"
	"artmarket/internal/logger"
	"artmarket/internal/mailer"
	tracing "artmarket/internal/otel"
	"artmarket/internal/repository/postgres"
	"artmarket/internal/service"
	"artmarket/internal/social"
	"artmarket/internal/storage"
	"artmarket/internal/worker"
)

const shutdownTimeout = 15 * time.Second

// @title Art Marketplace API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	log, err := logger.Init(cfg.Environment, cfg.Location())
	if err != nil {
		stdlog.Fatalf("failed to initialize logger: %v", err)
	}
	defer log.Sync()

	if cfg.Auth.JWTSigningKey == "" {
		log.Fatal("JWT_SIGNING_KEY is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(ctx, cfg.MinIO, log)
	if err != nil {
		log.Fatal("failed to initialize object storage", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, cfg.Database.Name),
	)
	metrics, err := service.NewMetrics(reg)
	if err != nil {
		log.Fatal("failed to register metrics", zap.Error(err))
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg, "/metrics", "/health", "/healthz")
	if err != nil {
		log.Fatal("failed to register http metrics", zap.Error(err))
	}

	// Initialize repositories and services
	users := postgres.NewUserPostgres(db)
	products := postgres.NewProductPostgres(db)
	auctions := postgres.NewAuctionPostgres(db)
	orders := postgres.NewOrderPostgres(db)
	rates := postgres.NewExchangeRatePostgres(db)
	settings := postgres.NewSettingsPostgres(db)
	shipping := postgres.NewShippingCountryPostgres(db)
	banners := postgres.NewBannerPostgres(db)
	posts := postgres.NewSocialPostPostgres(db)

	mail := mailer.New(cfg.SMTP, log)
	presign := cfg.MinIO.PresignExpiry

	socialSvc := service.NewSocialService(products, posts, settings, social.NewClient(cfg.Graph), objStore, presign, metrics, log)
	var announcer service.Announcer
	if cfg.Graph.Enabled() {
		announcer = socialSvc
	}
	auctionSvc := service.NewAuctionService(auctions, products, users, settings, mail, metrics, log)

	deps := handlers.Deps{
		DB:       db,
		Auth:     service.NewAuthService(users, cfg.Auth),
		Users:    service.NewUserService(users, products, objStore, presign, log),
		Products: service.NewProductService(products, settings, objStore, presign, announcer, log),
		Auctions: auctionSvc,
		Orders: service.NewOrderService(service.OrderDeps{
			Orders:   orders,
			Products: products,
			Users:    users,
			Rates:    rates,
			Shipping: shipping,
			Settings: settings,
			Mailer:   mail,
			Metrics:  metrics,
			Logger:   log,
		}),
		Catalog: service.NewCatalogService(service.CatalogDeps{
			Rates:         rates,
			Settings:      settings,
			Shipping:      shipping,
			Banners:       banners,
			Storage:       objStore,
			PresignExpiry: presign,
			Logger:        log,
		}),
		Social:      socialSvc,
		SigningKey:  []byte(cfg.Auth.JWTSigningKey),
		ReferralTTL: cfg.Auth.ReferralCookieTTL,
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    storage.MaxImageSize + 1<<20,
	})

	// Register global middleware
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics" || c.Path() == "/healthz"
	})))
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(httpMetrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, deps)

	mountSwagger(app, cfg.AppHost, cfg.AppScheme)

	var wg sync.WaitGroup
	closer := worker.NewAuctionCloser(auctionSvc, cfg.Worker.AuctionCloseInterval, log)
	wg.Add(1)
	go func() {
		defer wg.Done()
		closer.Run(ctx)
	}()

	addr := ":" + cfg.Port
	go func() {
		log.Info("server_listening", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			log.Error("server_stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown_started")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("server_shutdown_failed", zap.Error(err))
	}
	wg.Wait()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing_shutdown_failed", zap.Error(err))
	}
	log.Info("shutdown_complete")
}
