package model

import "time"

type CartStatus string

const (
	CartStatusActive    CartStatus = "ACTIVE"
	CartStatusAbandoned CartStatus = "ABANDONED"
	CartStatusOrdered   CartStatus = "ORDERED"
	CartStatusCancelled CartStatus = "CANCELLED"
)

// 1ユーザーにつきACTIVEは1つ、(user, store)ごとにABANDONEDも1つまで。
// 注文から参照されたカートは削除しない。
type Cart struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64      `gorm:"not null;index" json:"user_id"`
	StoreID   int64      `gorm:"not null;index" json:"store_id"`
	Status    CartStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
