package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/assetline-io/assetline-backend/api/routes"
	"github.com/assetline-io/assetline-backend/internal/assets"
	"github.com/assetline-io/assetline-backend/internal/catalog"
	"github.com/assetline-io/assetline-backend/internal/ledger"
	"github.com/assetline-io/assetline-backend/internal/purchases"
	"github.com/assetline-io/assetline-backend/internal/reporting"
	"github.com/assetline-io/assetline-backend/internal/requests"
	"github.com/assetline-io/assetline-backend/internal/users"
	"github.com/assetline-io/assetline-backend/internal/vendors"
	"github.com/assetline-io/assetline-backend/pkg/config"
	"github.com/assetline-io/assetline-backend/pkg/db"
	"github.com/assetline-io/assetline-backend/pkg/identity"
	"github.com/assetline-io/assetline-backend/pkg/logger"
	"github.com/assetline-io/assetline-backend/pkg/metrics"
	"github.com/assetline-io/assetline-backend/pkg/migrate"
	"github.com/assetline-io/assetline-backend/pkg/outbox"
	"github.com/assetline-io/assetline-backend/pkg/pubsub"
	"github.com/assetline-io/assetline-backend/pkg/redis"
	"github.com/assetline-io/assetline-backend/pkg/storage/local"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	err = migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient)
	requireResource(logg, "dev migrations", err)

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	identityClient, err := identity.NewClient(cfg.Identity)
	requireResource(logg, "identity provider", err)

	uploadStore, err := local.NewStore(cfg.Storage, logg)
	requireResource(logg, "upload store", err)

	gormDB := dbClient.DB()
	assetsRepo := assets.NewRepository(gormDB)
	vendorsRepo := vendors.NewRepository(gormDB)
	usersRepo := users.NewRepository(gormDB)
	ledgerService := ledger.NewService()
	outboxService := outbox.NewService(outbox.NewRepository(gormDB), logg)

	assetsService, err := assets.NewService(assetsRepo)
	requireResource(logg, "assets service", err)

	vendorsService, err := vendors.NewService(vendorsRepo)
	requireResource(logg, "vendors service", err)

	catalogService, err := catalog.NewService(catalog.NewRepository(gormDB))
	requireResource(logg, "catalog service", err)

	requestsService, err := requests.NewService(requests.NewRepository(gormDB), assetsRepo, usersRepo, ledgerService, dbClient, outboxService)
	requireResource(logg, "requests service", err)

	purchasesService, err := purchases.NewService(purchases.NewRepository(gormDB), assetsRepo, vendorsRepo, ledgerService, dbClient, outboxService)
	requireResource(logg, "purchases service", err)

	usersService, err := users.NewService(usersRepo, assetsRepo, identityClient, logg)
	requireResource(logg, "users service", err)

	reportingService, err := reporting.NewService(reporting.NewRepository(gormDB))
	requireResource(logg, "reporting service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			PubSub:      pubsubClient,
			HTTPMetrics: metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
			Uploads:     uploadStore,
			Assets:      assetsService,
			Vendors:     vendorsService,
			Catalog:     catalogService,
			Requests:    requestsService,
			Purchases:   purchasesService,
			Users:       usersService,
			Reporting:   reportingService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireResource(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to bootstrap "+resource, err)
	os.Exit(1)
}
