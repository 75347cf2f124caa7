package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// TotalPrice = OrderAmount + DeliveryFee。どちらも注文時点で確定した値。
type Order struct {
	ID          int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber string      `gorm:"type:varchar(50);not null;uniqueIndex" json:"order_number"`
	UserID      int64       `gorm:"not null;index" json:"user_id"`
	StoreID     int64       `gorm:"not null;index" json:"store_id"`
	CartID      int64       `gorm:"not null;uniqueIndex" json:"cart_id"`
	Status      OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	OrderAmount int64       `gorm:"not null" json:"order_amount"`
	DeliveryFee int64       `gorm:"not null" json:"delivery_fee"`
	TotalPrice  int64       `gorm:"not null" json:"total_price"`
	CreatedAt   time.Time   `gorm:"not null" json:"created_at"`
	PaidAt      *time.Time  `json:"paid_at"`
}
