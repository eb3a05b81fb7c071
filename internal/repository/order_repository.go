package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	// 明細込み。他人の注文はErrNotFound
	FindByIDForUser(ctx context.Context, orderID, userID int64) (model.Order, error)
	// 明細込み、新しい順
	ListByUserID(ctx context.Context, userID int64) ([]model.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
}
