package model

import "time"

const EventTypeOrderPaid = "order.paid"

// 決済完了時に外部へ送るイベント。キーは注文番号。
type OrderPaidEvent struct {
	OrderID     int64     `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      int64     `json:"user_id"`
	StoreID     int64     `json:"store_id"`
	CartID      int64     `json:"cart_id"`
	TotalPrice  int64     `json:"total_price"`
	PaidAt      time.Time `json:"paid_at"`
}

func NewOrderPaidEvent(o Order) OrderPaidEvent {
	ev := OrderPaidEvent{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		StoreID:     o.StoreID,
		CartID:      o.CartID,
		TotalPrice:  o.TotalPrice,
	}
	if o.PaidAt != nil {
		ev.PaidAt = *o.PaidAt
	}
	return ev
}
