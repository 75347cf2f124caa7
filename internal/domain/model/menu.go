package model

import "time"

// カタログ側のメニュー。Priceは現在価格。
type Menu struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StoreID     int64     `gorm:"not null;index" json:"store_id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Price       int64     `gorm:"not null" json:"price"`
	IsAvailable bool      `gorm:"not null;default:true" json:"is_available"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
