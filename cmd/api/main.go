package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lparedes/storefront-pricing/api/controllers"
	"github.com/lparedes/storefront-pricing/api/routes"
	"github.com/lparedes/storefront-pricing/internal/catalog"
	"github.com/lparedes/storefront-pricing/internal/pricing"
	"github.com/lparedes/storefront-pricing/internal/rules"
	"github.com/lparedes/storefront-pricing/pkg/config"
	"github.com/lparedes/storefront-pricing/pkg/db"
	"github.com/lparedes/storefront-pricing/pkg/logger"
	"github.com/lparedes/storefront-pricing/pkg/metrics"
	"github.com/lparedes/storefront-pricing/pkg/migrate"
	"github.com/lparedes/storefront-pricing/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "pricing-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "pricing-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	pricingMetrics := metrics.NewPricingMetrics(registry)

	rulesRepo := rules.NewRepository(dbClient.DB(), dbClient)
	catalogRepo := catalog.NewRepository(dbClient.DB())

	rulesService, err := rules.NewService(rulesRepo, redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create rules service", err)
		os.Exit(1)
	}

	var cacheStore pricing.CacheStore
	cacheTTL := cfg.Pricing.CacheTTL
	if cfg.Pricing.CacheEnabled {
		cacheStore = redisClient
	}
	pricingService, err := pricing.NewService(rulesRepo, catalogRepo, cacheStore, cacheTTL, logg, pricingMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting pricing api server")

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:         cfg,
			Logger:         logg,
			PricingService: pricingService,
			RulesService:   rulesService,
			CatalogRepo:    catalogRepo,
			MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			HealthDeps: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
			},
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "pricing api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
