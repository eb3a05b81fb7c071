package model

import "github.com/shopspring/decimal"

// 注文明細
// Priceは注文時点の商品価格のコピー（後から商品価格が変わっても不変）。
type OrderItem struct {
	ID                  int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64           `gorm:"not null;index" json:"order"`
	ProductID           int64           `gorm:"not null;index" json:"product"`
	ProductNameSnapshot string          `gorm:"type:varchar(200);not null" json:"product_name"`
	Price               decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity            int64           `gorm:"not null" json:"quantity"`
}
