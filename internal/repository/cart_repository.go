package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CartRepository interface {
	// 無ければ作る。何度呼んでも1ユーザー1カート
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	// カート行をロックして取得。無ければErrNotFound
	FindByUserIDForUpdate(ctx context.Context, userID int64) (model.Cart, error)
}
