package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusPaid    OrderStatus = "PAID"
	OrderStatusShipped OrderStatus = "SHIPPED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped:
		return true
	}
	return false
}

// 注文。配送先はチェックアウト時のリクエスト値をそのまま保存する。
type Order struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64           `gorm:"not null;index" json:"user"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	Status     OrderStatus     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Address    string          `gorm:"type:varchar(200);not null" json:"address"`
	City       string          `gorm:"type:varchar(100);not null" json:"city"`
	PostalCode string          `gorm:"type:varchar(50);not null" json:"postal_code"`
	Country    string          `gorm:"type:varchar(100);not null" json:"country"`
	Items      []OrderItem     `json:"items,omitempty"`
	CreatedAt  time.Time       `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
