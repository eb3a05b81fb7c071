package usecase

import (
	"context"
	"errors"

	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartUsecase は /api/cart の業務ロジックです。
type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
	mediaBaseURL string
	log          *zap.Logger
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
	mediaBaseURL string,
	log *zap.Logger,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		mediaBaseURL: mediaBaseURL,
		log:          log,
	}
}

type CartItemOutput struct {
	ID       int64          `json:"id"`
	Product  *ProductOutput `json:"product"`
	Quantity int64          `json:"quantity"`
}

type CartOutput struct {
	ID    int64            `json:"id"`
	User  int64            `json:"user"`
	Items []CartItemOutput `json:"items"`
	Total string           `json:"total"`
}

// 更新系はメッセージだけ返す
type MessageOutput struct {
	Message string `json:"message"`
}

// Quantityは未指定ならnil（1として扱う）
type AddCartInput struct {
	ProductID int64
	Quantity  *int64
}

type UpdateCartItemInput struct {
	ItemID   int64
	Quantity *int64
}

// GetCart はカート取得（無ければ作って空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartOutput, error) {
	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return CartOutput{}, internalError(u.log, "get cart", err)
	}

	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartOutput{}, internalError(u.log, "list cart items", err)
	}

	out := CartOutput{ID: cart.ID, User: cart.UserID, Items: make([]CartItemOutput, 0, len(items))}
	total := decimal.Zero
	for _, it := range items {
		item := CartItemOutput{ID: it.ID, Quantity: it.Quantity}
		// 削除済み商品はnil
		if it.Product != nil {
			p := toProductOutput(*it.Product, u.mediaBaseURL)
			item.Product = &p
			total = total.Add(it.Product.Price.Mul(decimal.NewFromInt(it.Quantity)))
		}
		out.Items = append(out.Items, item)
	}
	out.Total = total.StringFixed(2)
	return out, nil
}

// AddToCart はカートに追加（同一商品は数量加算）。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (MessageOutput, error) {
	if in.ProductID <= 0 {
		return MessageOutput{}, validationError("product_id is required")
	}
	qty := int64(1)
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	if qty < 1 {
		return MessageOutput{}, validationError("quantity must be >= 1")
	}

	// 商品チェック（公開のみ）
	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return MessageOutput{}, notFound("product not found")
	}
	if err != nil {
		return MessageOutput{}, internalError(u.log, "find product", err)
	}
	if !p.IsActive {
		return MessageOutput{}, notFound("product not found")
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return MessageOutput{}, internalError(u.log, "get cart", err)
	}

	if err := u.cartItemRepo.AddOrIncrement(ctx, cart.ID, p.ID, qty); err != nil {
		return MessageOutput{}, internalError(u.log, "add cart item", err)
	}

	return MessageOutput{Message: "Product added to cart"}, nil
}

// 数量0以下は明細削除
func (u *CartUsecase) UpdateCartItem(ctx context.Context, userID int64, in UpdateCartItemInput) (MessageOutput, error) {
	if err := u.checkOwned(ctx, userID, in.ItemID); err != nil {
		return MessageOutput{}, err
	}

	qty := int64(1)
	if in.Quantity != nil {
		qty = *in.Quantity
	}

	if qty <= 0 {
		return u.delete(ctx, in.ItemID)
	}

	err := u.cartItemRepo.UpdateQuantity(ctx, in.ItemID, qty)
	if errors.Is(err, repo.ErrNotFound) {
		return MessageOutput{}, notFound("cart item not found")
	}
	if err != nil {
		return MessageOutput{}, internalError(u.log, "update cart item", err)
	}
	return MessageOutput{Message: "Cart item updated"}, nil
}

func (u *CartUsecase) RemoveCartItem(ctx context.Context, userID, itemID int64) (MessageOutput, error) {
	if err := u.checkOwned(ctx, userID, itemID); err != nil {
		return MessageOutput{}, err
	}
	return u.delete(ctx, itemID)
}

// 所有チェック（他人のカートの明細は404）
func (u *CartUsecase) checkOwned(ctx context.Context, userID, itemID int64) error {
	if itemID <= 0 {
		return notFound("cart item not found")
	}
	owned, err := u.cartItemRepo.IsOwnedByUser(ctx, itemID, userID)
	if err != nil {
		return internalError(u.log, "check cart item owner", err)
	}
	if !owned {
		return notFound("cart item not found")
	}
	return nil
}

func (u *CartUsecase) delete(ctx context.Context, itemID int64) (MessageOutput, error) {
	err := u.cartItemRepo.DeleteByID(ctx, itemID)
	if errors.Is(err, repo.ErrNotFound) {
		return MessageOutput{}, notFound("cart item not found")
	}
	if err != nil {
		return MessageOutput{}, internalError(u.log, "delete cart item", err)
	}
	return MessageOutput{Message: "Item removed from cart"}, nil
}

