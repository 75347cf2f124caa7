package repository

import (
	"context"

	"wheats/internal/domain/model"
)

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, limit int) ([]model.Order, error)
	Create(ctx context.Context, order model.Order) (model.Order, error)
	// カートが注文から参照されているか
	ExistsByCartID(ctx context.Context, cartID int64) (bool, error)
}
