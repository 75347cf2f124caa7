package model

import "time"

// カタログ側の店舗。コアからは読み取り専用。
type Store struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	DeliveryFee int64     `gorm:"not null;default:0" json:"delivery_fee"`
	IsOpen      bool      `gorm:"not null;default:true" json:"is_open"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
