package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/infra/cache"
	"storefront/internal/infra/db"
	"storefront/internal/logger"
	"storefront/internal/server"
	"storefront/internal/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .envは無くてもよい（コンテナでは環境変数を直接渡す）
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		appLogger.Fatal("could not connect to database", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		appLogger.Fatal("migrate failed", zap.Error(err))
	}

	//カタログキャッシュ（REDIS_ADDRが無ければ無効）
	var catalogCache usecase.CatalogCache = cache.NopCache{}
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			appLogger.Fatal("could not connect to redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		catalogCache = cache.NewRedisCache(redisClient, cache.KeyPrefix, cfg.CatalogCacheTTL)
		appLogger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	}

	e := server.NewRouter(cfg, gormDB, catalogCache, appLogger)

	addr := cfg.Port
	if !strings.HasPrefix(addr, ":") {
		addr = ":" + addr
	}
	if err := server.Start(ctx, e, addr, appLogger); err != nil {
		appLogger.Fatal("server error", zap.Error(err))
	}
}
