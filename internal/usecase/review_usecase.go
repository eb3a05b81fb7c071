package usecase

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"go.uber.org/zap"
)

type ReviewUsecase struct {
	tx       repo.TransactionManager
	userRepo repo.UserRepository
	cache    CatalogCache
	log      *zap.Logger
}

func NewReviewUsecase(tx repo.TransactionManager, userRepo repo.UserRepository, cache CatalogCache, log *zap.Logger) *ReviewUsecase {
	return &ReviewUsecase{tx: tx, userRepo: userRepo, cache: cache, log: log}
}

// POST /api/products/{id}/reviews/ の入力
// Ratingは未指定ならnil
type CreateReviewInput struct {
	Rating  *int
	Comment string
}

// レビュー作成。作成と同じTxで商品のrating/numReviewsを数え直す
func (u *ReviewUsecase) CreateReview(ctx context.Context, userID, productID int64, in CreateReviewInput) (ReviewOutput, error) {
	if productID <= 0 {
		return ReviewOutput{}, notFound("product not found")
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return ReviewOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return ReviewOutput{}, internalError(u.log, "find reviewer", err)
	}

	var created model.Review
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//商品行をロックして集計の更新を直列にする
		if _, err := r.Products().FindByIDForUpdate(ctx, productID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("product not found")
			}
			return err
		}

		exists, err := r.Reviews().ExistsByUserAndProduct(ctx, userID, productID)
		if err != nil {
			return err
		}
		if exists {
			return conflict("product already reviewed")
		}

		if in.Rating == nil || *in.Rating == 0 {
			return validationError("please select a rating")
		}
		if *in.Rating < 1 || *in.Rating > 5 {
			return validationError("rating must be between 1 and 5")
		}

		created = model.Review{
			UserID:    userID,
			ProductID: productID,
			Name:      user.Username,
			Rating:    *in.Rating,
			Comment:   in.Comment,
		}
		if err := r.Reviews().Create(ctx, &created); err != nil {
			if errors.Is(err, repo.ErrConflict) {
				return conflict("product already reviewed")
			}
			return err
		}

		avg, count, err := r.Reviews().Aggregate(ctx, productID)
		if err != nil {
			return err
		}
		return r.Products().UpdateRating(ctx, productID, avg, count)
	})
	if err != nil {
		return ReviewOutput{}, passOrInternal(u.log, "create review", err)
	}

	if err := u.cache.Delete(ctx, productCacheKey(productID)); err != nil {
		u.log.Warn("catalog cache delete failed", zap.Int64("product_id", productID), zap.Error(err))
	}

	return toReviewOutput(created), nil
}
