package model

import "time"

// 注文明細。注文時点の価格・名前のスナップショットで、後から再計算しない。
type OrderLine struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID          int64     `gorm:"not null;index" json:"order_id"`
	MenuID           int64     `gorm:"not null;index" json:"menu_id"`
	MenuNameSnapshot string    `gorm:"type:varchar(255);not null" json:"menu_name_snapshot"`
	UnitPrice        int64     `gorm:"not null" json:"unit_price"`
	Quantity         int64     `gorm:"not null" json:"quantity"`
	CreatedAt        time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (l OrderLine) LinePrice() int64 {
	return l.UnitPrice * l.Quantity
}
