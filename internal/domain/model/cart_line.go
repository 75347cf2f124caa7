package model

import "time"

type CartLineStatus string

const (
	CartLineStatusActive    CartLineStatus = "ACTIVE"
	CartLineStatusOrdered   CartLineStatus = "ORDERED"
	CartLineStatusCancelled CartLineStatus = "CANCELLED"
)

// カートの明細。価格は持たない（表示時にカタログから引く）。
// ACTIVEの間はquantity>0、同じmenuのACTIVE明細はカート内に1つだけ。
type CartLine struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64          `gorm:"not null;index" json:"cart_id"`
	MenuID    int64          `gorm:"not null;index" json:"menu_id"`
	Quantity  int64          `gorm:"not null" json:"quantity"`
	Status    CartLineStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
