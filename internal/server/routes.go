package server

import (
	"storefront/internal/config"
	"storefront/internal/handler"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/usecase"
	"storefront/internal/validator"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBとキャッシュからRepository → Usecase → Handler を組み立ててルートを登録する
func NewRouter(cfg config.Config, gdb *gorm.DB, cache usecase.CatalogCache, log *zap.Logger) *echo.Echo {
	e := NewEcho(cfg, log)

	//Repository（GORM実装）
	userRepo := infraRepo.NewUserGormRepository(gdb)
	rtRepo := infraRepo.NewRefreshTokenRepository(gdb)
	auditRepo := infraRepo.NewAuditLogGormRepository(gdb)
	productRepo := infraRepo.NewProductGormRepository(gdb)
	categoryRepo := infraRepo.NewCategoryGormRepository(gdb)
	cartRepo := infraRepo.NewCartGormRepository(gdb)
	orderRepo := infraRepo.NewOrderGormRepository(gdb)
	addressRepo := infraRepo.NewShippingAddressGormRepository(gdb)
	txm := infraRepo.NewTxManagerGorm(gdb)

	//Usecase
	productUC := usecase.NewProductUsecase(productRepo, categoryRepo, txm, cache, usecase.CatalogSettings{
		PageSize:     cfg.PageSize,
		MaxPageSize:  cfg.MaxPageSize,
		MediaBaseURL: cfg.MediaBaseURL,
	}, log)
	reviewUC := usecase.NewReviewUsecase(txm, userRepo, cache, log)
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, productRepo, cfg.MediaBaseURL, log)
	orderUC := usecase.NewOrderUsecase(txm, orderRepo, log)
	addressUC := usecase.NewAddressUsecase(addressRepo, log)
	authUC := usecase.NewAuthUsecase(usecase.AuthSettings{
		JWTSecret:       cfg.JWTSecret,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
	}, userRepo, rtRepo, auditRepo, validator.NewAuthValidator(userRepo), log)
	auditUC := usecase.NewAuditLogUsecase(auditRepo, log)

	//Handler
	handler.NewAuthHandler(authUC).RegisterRoutes(e)
	handler.NewProductHandler(productUC, reviewUC).RegisterRoutes(e, cfg, userRepo)
	handler.NewCartHandler(cartUC).RegisterRoutes(e, cfg, userRepo)
	handler.NewAddressHandler(addressUC).RegisterRoutes(e, cfg, userRepo)
	handler.NewOrderHandler(orderUC).RegisterRoutes(e, cfg, userRepo)
	handler.NewAdminProductHandler(productUC).RegisterRoutes(e, cfg, userRepo)
	handler.NewAdminUserHandler(authUC, auditUC).RegisterRoutes(e, cfg, userRepo)

	return e
}
