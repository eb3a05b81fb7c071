package model

import "time"

// 商品レビュー。1ユーザー1商品につき1件。
type Review struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_reviews_user_product" json:"user"`
	ProductID int64     `gorm:"not null;index;uniqueIndex:idx_reviews_user_product" json:"product"`
	Name      string    `gorm:"type:varchar(200);not null" json:"name"`
	Rating    int       `gorm:"not null;check:rating BETWEEN 1 AND 5" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
