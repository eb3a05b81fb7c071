package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CartItemRepository interface {
	// 商品（カテゴリ込み）をpreloadして返す
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// チェックアウト用。明細行をロックして返す（preloadなし）
	ListByCartIDForUpdate(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// 同一商品は数量をプラス、新規は指定数量で作成
	AddOrIncrement(ctx context.Context, cartID, productID, qty int64) error
	UpdateQuantity(ctx context.Context, cartItemID, qty int64) error
	DeleteByID(ctx context.Context, cartItemID int64) error
	DeleteByIDs(ctx context.Context, cartItemIDs []int64) error
	// 商品削除時にその商品を含む明細を消す
	DeleteByProductID(ctx context.Context, productID int64) error
	IsOwnedByUser(ctx context.Context, cartItemID, userID int64) (bool, error)
}
