package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderUsecase struct {
	tx        repo.TransactionManager
	orderRepo repo.OrderRepository
	log       *zap.Logger
}

func NewOrderUsecase(tx repo.TransactionManager, orderRepo repo.OrderRepository, log *zap.Logger) *OrderUsecase {
	return &OrderUsecase{tx: tx, orderRepo: orderRepo, log: log}
}

// 配送先はリクエストの値をそのまま注文に保存する
type PlaceOrderInput struct {
	Address    string
	City       string
	PostalCode string
	Country    string
}

type OrderItemOutput struct {
	ID          int64  `json:"id"`
	Product     int64  `json:"product"`
	ProductName string `json:"product_name"`
	Price       string `json:"price"`
	Quantity    int64  `json:"quantity"`
}

type OrderOutput struct {
	ID         int64             `json:"id"`
	User       int64             `json:"user"`
	Status     string            `json:"status"`
	TotalPrice string            `json:"total_price"`
	Address    string            `json:"address"`
	City       string            `json:"city"`
	PostalCode string            `json:"postal_code"`
	Country    string            `json:"country"`
	CreatedAt  time.Time         `json:"created_at"`
	Items      []OrderItemOutput `json:"items"`
}

// カートから注文を作る。
// 注文作成・明細作成・カート明細削除は1つのTx。どれか失敗したら全部戻す
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	var order model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//カート行をロック（同じユーザーの同時チェックアウトを直列に）
		cart, err := r.Carts().FindByUserIDForUpdate(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return badRequest("Cart is empty")
		}
		if err != nil {
			return err
		}

		items, err := r.CartItems().ListByCartIDForUpdate(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return badRequest("Cart is empty")
		}

		productIDs := make([]int64, 0, len(items))
		for _, it := range items {
			productIDs = append(productIDs, it.ProductID)
		}
		products, err := r.Products().FindByIDs(ctx, productIDs)
		if err != nil {
			return err
		}
		byID := make(map[int64]model.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		//合計は今の商品価格で計算し、明細に価格を固定する
		total := decimal.Zero
		orderItems := make([]model.OrderItem, 0, len(items))
		consumed := make([]int64, 0, len(items))
		for _, it := range items {
			p, ok := byID[it.ProductID]
			if !ok {
				return badRequest(fmt.Sprintf("product %d is no longer available", it.ProductID))
			}
			total = total.Add(p.Price.Mul(decimal.NewFromInt(it.Quantity)))
			orderItems = append(orderItems, model.OrderItem{
				ProductID:           p.ID,
				ProductNameSnapshot: p.Name,
				Price:               p.Price,
				Quantity:            it.Quantity,
			})
			consumed = append(consumed, it.ID)
		}

		order = model.Order{
			UserID:     userID,
			TotalPrice: total,
			Status:     model.OrderStatusPending,
			Address:    strings.TrimSpace(in.Address),
			City:       strings.TrimSpace(in.City),
			PostalCode: strings.TrimSpace(in.PostalCode),
			Country:    strings.TrimSpace(in.Country),
		}
		if err := r.Orders().Create(ctx, &order); err != nil {
			return err
		}
		if err := r.OrderItems().CreateBulk(ctx, order.ID, orderItems); err != nil {
			return err
		}

		//読んだ明細だけ消す（読んだ後に追加された明細は次の注文に残る）
		if err := r.CartItems().DeleteByIDs(ctx, consumed); err != nil {
			return err
		}

		order.Items = orderItems
		return nil
	})
	if err != nil {
		return OrderOutput{}, passOrInternal(u.log, "place order", err)
	}

	u.log.Info("order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", userID),
		zap.String("total_price", order.TotalPrice.StringFixed(2)),
	)
	return toOrderOutput(order), nil
}

// 新しい順
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	orders, err := u.orderRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, internalError(u.log, "list orders", err)
	}
	out := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderOutput(o))
	}
	return out, nil
}

func (u *OrderUsecase) GetOrder(ctx context.Context, userID, orderID int64) (OrderOutput, error) {
	o, err := u.orderRepo.FindByIDForUser(ctx, orderID, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, notFound("order not found")
	}
	if err != nil {
		return OrderOutput{}, internalError(u.log, "get order", err)
	}
	return toOrderOutput(o), nil
}

// ステータスだけの部分更新。遷移の制約はなく、値だけ検証する
func (u *OrderUsecase) UpdateOrderStatus(ctx context.Context, userID, orderID int64, status string) (OrderOutput, error) {
	next := model.OrderStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !next.Valid() {
		return OrderOutput{}, validationError("status must be one of PENDING, PAID, SHIPPED")
	}

	var order model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUser(ctx, orderID, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("order not found")
		}
		if err != nil {
			return err
		}

		prev := o.Status
		if err := r.Orders().UpdateStatus(ctx, orderID, next); err != nil {
			return err
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  userID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   fmt.Sprintf(`{"status":%q}`, prev),
			AfterJSON:    fmt.Sprintf(`{"status":%q}`, next),
			CreatedAt:    time.Now(),
		}); err != nil {
			return err
		}

		o.Status = next
		order = o
		return nil
	})
	if err != nil {
		return OrderOutput{}, passOrInternal(u.log, "update order status", err)
	}
	return toOrderOutput(order), nil
}

func toOrderOutput(o model.Order) OrderOutput {
	out := OrderOutput{
		ID:         o.ID,
		User:       o.UserID,
		Status:     string(o.Status),
		TotalPrice: o.TotalPrice.StringFixed(2),
		Address:    o.Address,
		City:       o.City,
		PostalCode: o.PostalCode,
		Country:    o.Country,
		CreatedAt:  o.CreatedAt,
		Items:      make([]OrderItemOutput, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, OrderItemOutput{
			ID:          it.ID,
			Product:     it.ProductID,
			ProductName: it.ProductNameSnapshot,
			Price:       it.Price.StringFixed(2),
			Quantity:    it.Quantity,
		})
	}
	return out
}
