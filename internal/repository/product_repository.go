package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 一覧検索
type ProductListQuery struct {
	Page    int
	Limit   int
	Keyword string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	// カテゴリとレビューをpreload。非公開の商品も返す
	FindByID(ctx context.Context, id int64) (model.Product, error)
	// 行ロック付き（preloadなし）
	FindByIDForUpdate(ctx context.Context, id int64) (model.Product, error)
	FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error)

	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p model.Product) error
	UpdateRating(ctx context.Context, id int64, rating float64, numReviews int64) error
	SoftDelete(ctx context.Context, id int64) error
}

type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)
}
