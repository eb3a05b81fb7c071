package main

import (
	"context"
	"flag"
	"log"
	"os"

	"storefront/internal/config"
	"storefront/internal/infra/cache"
	"storefront/internal/infra/db"
	"storefront/internal/logger"
	"storefront/internal/seed"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	withCatalog := flag.Bool("catalog", false, "also seed the Electronics/Gaming/Fashion catalog")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	appLogger, err := logger.New(cfg.GoEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	gormDB, err := db.Connect(cfg)
	if err != nil {
		appLogger.Fatal("could not connect to database", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		appLogger.Fatal("migrate failed", zap.Error(err))
	}

	ctx := context.Background()
	opts := seed.Options{
		AdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
		WithCatalog:   *withCatalog,
	}
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			appLogger.Warn("redis unavailable, catalog cache not invalidated", zap.Error(err))
		} else {
			defer func() { _ = redisClient.Close() }()
			opts.Cache = cache.NewRedisCache(redisClient, cache.KeyPrefix, cfg.CatalogCacheTTL)
		}
	}

	err = seed.Run(ctx, gormDB, opts, appLogger)
	if err != nil {
		appLogger.Fatal("seed failed", zap.Error(err))
	}
	appLogger.Info("database seeded")
}
