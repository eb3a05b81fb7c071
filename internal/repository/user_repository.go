package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 保存・取得を約束（見つからなければErrNotFound）
type UserRepository interface {
	//新規ユーザー作成。username重複はErrConflict
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// ユーザー情報の更新=>アクティブかどうか・ロールの変更・最後のログイン更新など
	Update(ctx context.Context, user *model.User) error
	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, userID int64) error
}
