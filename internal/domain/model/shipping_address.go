package model

import "time"

// 配送先住所
// デフォルトはユーザーごとに最大1件（部分ユニークインデックスで保証）。
type ShippingAddress struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index;index:idx_shipping_addresses_default,unique,where:is_default = true" json:"user"`

	//番地など
	Address string `gorm:"type:varchar(200);not null" json:"address"`

	City string `gorm:"type:varchar(100);not null" json:"city"`

	//郵便番号
	PostalCode string `gorm:"type:varchar(50);not null" json:"postal_code"`

	Country string `gorm:"type:varchar(100);not null" json:"country"`

	//このユーザーのデフォルト住所か
	IsDefault bool `gorm:"not null;default:false" json:"is_default"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
