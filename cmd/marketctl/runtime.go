package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"artmarket/internal/config"
	"artmarket/internal/database"
	"artmarket/internal/logger"
	"artmarket/internal/mailer"
	"artmarket/internal/model"
	"artmarket/internal/repository/postgres"
	"artmarket/internal/service"
	"artmarket/internal/social"
	"artmarket/internal/storage"
)

// cliActor is the identity marketctl acts as on admin-only operations.
var cliActor = service.Actor{UserID: "marketctl", Role: model.RoleAdmin}

// runtime holds the services a command works with.
type runtime struct {
	cfg      *config.AppConfig
	log      *zap.Logger
	db       *sql.DB
	auctions service.AuctionService
	catalog  service.CatalogService
	social   service.SocialService
}

func (r *runtime) Close() {
	if r.db != nil {
		r.db.Close()
	}
	if r.log != nil {
		r.log.Sync()
	}
}

// openRuntime wires the services the same way the API does. Tests replace it.
var openRuntime = func(ctx context.Context) (*runtime, error) {
	cfg := config.Load()
	log, err := logger.New(cfg.Environment, cfg.Location())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	objStore, err := storage.NewMinIO(ctx, cfg.MinIO, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	users := postgres.NewUserPostgres(db)
	products := postgres.NewProductPostgres(db)
	settings := postgres.NewSettingsPostgres(db)
	presign := cfg.MinIO.PresignExpiry

	return &runtime{
		cfg: cfg,
		log: log,
		db:  db,
		auctions: service.NewAuctionService(
			postgres.NewAuctionPostgres(db), products, users, settings,
			mailer.New(cfg.SMTP, log), nil, log,
		),
		catalog: service.NewCatalogService(service.CatalogDeps{
			Rates:         postgres.NewExchangeRatePostgres(db),
			Settings:      settings,
			Shipping:      postgres.NewShippingCountryPostgres(db),
			Banners:       postgres.NewBannerPostgres(db),
			Storage:       objStore,
			PresignExpiry: presign,
			Logger:        log,
		}),
		social: service.NewSocialService(
			products, postgres.NewSocialPostPostgres(db), settings,
			social.NewClient(cfg.Graph), objStore, presign, nil, log,
		),
	}, nil
}

// withRuntime runs fn with a fresh runtime and the command timeout applied.
func withRuntime(cmd *cobra.Command, fn func(ctx context.Context, rt *runtime) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(ctx, rt)
}
