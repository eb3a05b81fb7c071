package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type ReviewRepository interface {
	// (user, product) 重複はErrConflict
	Create(ctx context.Context, review *model.Review) error
	ExistsByUserAndProduct(ctx context.Context, userID, productID int64) (bool, error)
	// 平均と件数を数え直す
	Aggregate(ctx context.Context, productID int64) (avg float64, count int64, err error)
}
