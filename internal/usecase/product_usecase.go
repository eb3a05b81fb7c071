package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 商品詳細とカテゴリ一覧のキャッシュ
type CatalogCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, keys ...string) error
}

// seedからも消すので公開
const CategoriesCacheKey = "categories"

// decimal(10,2)に収まる上限（これ未満）
var maxPrice = decimal.New(1, 8)

func productCacheKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

// 一覧のページサイズと画像URL
type CatalogSettings struct {
	PageSize     int
	MaxPageSize  int
	MediaBaseURL string
}

type ProductUsecase struct {
	productRepo  repo.ProductRepository
	categoryRepo repo.CategoryRepository
	tx           repo.TransactionManager
	cache        CatalogCache
	settings     CatalogSettings
	log          *zap.Logger
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	categoryRepo repo.CategoryRepository,
	tx repo.TransactionManager,
	cache CatalogCache,
	settings CatalogSettings,
	log *zap.Logger,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		tx:           tx,
		cache:        cache,
		settings:     settings,
		log:          log,
	}
}

// GET /api/products/ の入力
// PageSizeは0なら設定値
type ListProductsInput struct {
	Keyword  string
	Page     int
	PageSize int
}

type ProductPage struct {
	Count    int64
	Page     int
	PageSize int
	HasNext  bool
	HasPrev  bool
	Results  []ProductOutput
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductPage, error) {
	if in.Page < 1 {
		return ProductPage{}, notFound("invalid page")
	}
	size := in.PageSize
	if size < 1 {
		size = u.settings.PageSize
	}
	if size > u.settings.MaxPageSize {
		size = u.settings.MaxPageSize
	}

	products, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:    in.Page,
		Limit:   size,
		Keyword: strings.TrimSpace(in.Keyword),
	})
	if err != nil {
		return ProductPage{}, internalError(u.log, "list products", err)
	}

	//最終ページより後ろは404（0件のときは1ページ目だけ許す）
	lastPage := int((total + int64(size) - 1) / int64(size))
	if lastPage < 1 {
		lastPage = 1
	}
	if in.Page > lastPage {
		return ProductPage{}, notFound("invalid page")
	}

	results := make([]ProductOutput, 0, len(products))
	for _, p := range products {
		results = append(results, toProductOutput(p, u.settings.MediaBaseURL))
	}

	return ProductPage{
		Count:    total,
		Page:     in.Page,
		PageSize: size,
		HasNext:  in.Page < lastPage,
		HasPrev:  in.Page > 1,
		Results:  results,
	}, nil
}

// 非公開・削除済みは404
func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (ProductOutput, error) {
	if productID <= 0 {
		return ProductOutput{}, notFound("not found")
	}

	var cached ProductOutput
	if hit, err := u.cache.Get(ctx, productCacheKey(productID), &cached); err != nil {
		u.log.Warn("catalog cache get failed", zap.Int64("product_id", productID), zap.Error(err))
	} else if hit {
		return cached, nil
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductOutput{}, notFound("not found")
	}
	if err != nil {
		return ProductOutput{}, internalError(u.log, "get product", err)
	}
	if !p.IsActive {
		return ProductOutput{}, notFound("not found")
	}

	out := toProductOutput(p, u.settings.MediaBaseURL)
	if err := u.cache.Set(ctx, productCacheKey(productID), out); err != nil {
		u.log.Warn("catalog cache set failed", zap.Int64("product_id", productID), zap.Error(err))
	}
	return out, nil
}

func (u *ProductUsecase) ListCategories(ctx context.Context) ([]CategoryOutput, error) {
	var cached []CategoryOutput
	if hit, err := u.cache.Get(ctx, CategoriesCacheKey, &cached); err != nil {
		u.log.Warn("catalog cache get failed", zap.String("key", CategoriesCacheKey), zap.Error(err))
	} else if hit {
		return cached, nil
	}

	list, err := u.categoryRepo.List(ctx)
	if err != nil {
		return nil, internalError(u.log, "list categories", err)
	}

	out := make([]CategoryOutput, 0, len(list))
	for _, c := range list {
		out = append(out, toCategoryOutput(c))
	}
	if err := u.cache.Set(ctx, CategoriesCacheKey, out); err != nil {
		u.log.Warn("catalog cache set failed", zap.String("key", CategoriesCacheKey), zap.Error(err))
	}
	return out, nil
}

// 管理者の作成・更新の入力。nilは「指定なし」
type ProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int64
	Image       *string
	IsActive    *bool
	CategoryID  *int64
}

// 入力をpに反映する。partial=falseなら必須項目を要求
func applyProductInput(p *model.Product, in ProductInput, partial bool) error {
	if !partial {
		if in.Name == nil {
			return validationError("name is required")
		}
		if in.Price == nil {
			return validationError("price is required")
		}
		if in.CategoryID == nil {
			return validationError("category_id is required")
		}
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return validationError("name is required")
		}
		p.Name = name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return validationError("price must be >= 0")
		}
		if in.Price.GreaterThanOrEqual(maxPrice) {
			return validationError("price is too large")
		}
		p.Price = in.Price.Round(2)
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return validationError("stock must be >= 0")
		}
		p.Stock = *in.Stock
	}
	if in.Image != nil {
		p.Image = *in.Image
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.CategoryID != nil {
		id := *in.CategoryID
		p.CategoryID = &id
	}
	return nil
}

// category_idが実在するか
func (u *ProductUsecase) checkCategory(ctx context.Context, categoryID *int64) (*model.Category, error) {
	if categoryID == nil {
		return nil, nil
	}
	c, err := u.categoryRepo.FindByID(ctx, *categoryID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, validationError("invalid category_id")
	}
	if err != nil {
		return nil, internalError(u.log, "find category", err)
	}
	return &c, nil
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, adminUserID int64, in ProductInput) (ProductOutput, error) {
	p := model.Product{IsActive: true}
	if err := applyProductInput(&p, in, false); err != nil {
		return ProductOutput{}, err
	}
	category, err := u.checkCategory(ctx, p.CategoryID)
	if err != nil {
		return ProductOutput{}, err
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Products().Create(ctx, &p); err != nil {
			return err
		}
		//監査ログを作成（商品作成）
		return r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminUserID,
			Action:       model.AuditActionCreateProduct,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   p.ID,
			AfterJSON:    productSnapshot(p),
			CreatedAt:    time.Now(),
		})
	})
	if err != nil {
		return ProductOutput{}, internalError(u.log, "create product", err)
	}

	p.Category = category
	return toProductOutput(p, u.settings.MediaBaseURL), nil
}

// PUT は partial=false、PATCH は partial=true
func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, adminUserID, productID int64, in ProductInput, partial bool) (ProductOutput, error) {
	if productID <= 0 {
		return ProductOutput{}, notFound("not found")
	}
	category, err := u.checkCategory(ctx, in.CategoryID)
	if err != nil {
		return ProductOutput{}, err
	}

	var updated model.Product
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByIDForUpdate(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("not found")
		}
		if err != nil {
			return err
		}

		p := before
		if err := applyProductInput(&p, in, partial); err != nil {
			return err
		}
		if err := r.Products().Update(ctx, p); err != nil {
			return err
		}

		//在庫数が変わったら調整履歴を残す
		if p.Stock != before.Stock {
			if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
				ProductID:   productID,
				AdminUserID: adminUserID,
				Delta:       p.Stock - before.Stock,
				Reason:      "admin product update",
			}); err != nil {
				return err
			}
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminUserID,
			Action:       model.AuditActionUpdateProduct,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   productSnapshot(before),
			AfterJSON:    productSnapshot(p),
			CreatedAt:    time.Now(),
		}); err != nil {
			return err
		}

		updated = p
		return nil
	})
	if err != nil {
		return ProductOutput{}, passOrInternal(u.log, "update product", err)
	}

	u.invalidateProduct(ctx, productID)

	if category == nil && updated.CategoryID != nil {
		if category, err = u.checkCategory(ctx, updated.CategoryID); err != nil {
			return ProductOutput{}, err
		}
	}
	updated.Category = category
	return toProductOutput(updated, u.settings.MediaBaseURL), nil
}

// 論理削除。カートに入っている明細も消す
func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, adminUserID, productID int64) error {
	if productID <= 0 {
		return notFound("not found")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByIDForUpdate(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("not found")
		}
		if err != nil {
			return err
		}
		if err := r.Products().SoftDelete(ctx, productID); err != nil {
			return err
		}
		if err := r.CartItems().DeleteByProductID(ctx, productID); err != nil {
			return err
		}
		return r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminUserID,
			Action:       model.AuditActionDeleteProduct,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   productSnapshot(before),
			CreatedAt:    time.Now(),
		})
	})
	if err != nil {
		return passOrInternal(u.log, "delete product", err)
	}

	u.invalidateProduct(ctx, productID)
	return nil
}

func (u *ProductUsecase) invalidateProduct(ctx context.Context, productID int64) {
	if err := u.cache.Delete(ctx, productCacheKey(productID)); err != nil {
		u.log.Warn("catalog cache delete failed", zap.Int64("product_id", productID), zap.Error(err))
	}
}

// 監査ログ用のJSON
func productSnapshot(p model.Product) string {
	b, _ := json.Marshal(map[string]any{
		"name":        p.Name,
		"price":       p.Price.StringFixed(2),
		"stock":       p.Stock,
		"is_active":   p.IsActive,
		"category_id": p.CategoryID,
		"image":       p.Image,
	})
	return string(b)
}
