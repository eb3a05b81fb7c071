package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 配送先住所を保存・取得する窓口
type ShippingAddressRepository interface {
	//ユーザーが持つ住所一覧を返す（デフォルトが先頭）
	ListByUserID(ctx context.Context, userID int64) ([]model.ShippingAddress, error)

	//そのユーザーの住所を1件取得。他人の住所はErrNotFound
	FindByIDForUser(ctx context.Context, addressID, userID int64) (model.ShippingAddress, error)

	//住所を新規作成する。
	//ユーザーの最初の住所は必ずデフォルトになる。
	//デフォルト指定なら既存のデフォルトを同じTxで外す。
	Create(ctx context.Context, address *model.ShippingAddress) error

	//住所の更新。IsDefault=trueなら他のデフォルトを外す。
	Update(ctx context.Context, address *model.ShippingAddress) error

	//住所の削除。
	Delete(ctx context.Context, addressID, userID int64) error
}
