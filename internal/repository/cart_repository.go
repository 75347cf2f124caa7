package repository

import (
	"context"

	"wheats/internal/domain/model"
)

// カート本体の永続化。削除は持たない（ステータスで管理する）。
type CartRepository interface {
	FindByID(ctx context.Context, cartID int64) (model.Cart, error)
	// 行ロック（SELECT ... FOR UPDATE）付きで取得
	LockByID(ctx context.Context, cartID int64) (model.Cart, error)
	FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindByUserStoreStatus(ctx context.Context, userID, storeID int64, status model.CartStatus) (model.Cart, error)
	Create(ctx context.Context, cart model.Cart) (model.Cart, error)
	UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error
}
