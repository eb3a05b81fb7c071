package model

// カートの明細
// (cart_id, product_id) は一意。数量は1以上。
type CartItem struct {
	ID        int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64    `gorm:"not null;uniqueIndex:idx_cart_items_cart_product" json:"cart"`
	ProductID int64    `gorm:"not null;index;uniqueIndex:idx_cart_items_cart_product" json:"product_id"`
	Product   *Product `json:"product,omitempty"`
	Quantity  int64    `gorm:"not null;default:1;check:quantity >= 1" json:"quantity"`
}
