package model

import "time"

// リフレッシュトークン（平文は保存せずsha256ハッシュのみ）
type RefreshToken struct {
	ID        string     `gorm:"type:varchar(36);primaryKey"`
	UserID    int64      `gorm:"not null;index"`
	TokenHash string     `gorm:"not null;uniqueIndex"`
	UserAgent string     `gorm:"not null;default:''"`
	ExpiresAt time.Time  `gorm:"not null;index"`
	UsedAt    *time.Time `gorm:"index"`
	RevokedAt *time.Time `gorm:"index"`
	CreatedAt time.Time
}
