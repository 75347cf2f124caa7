package repository

import (
	"context"

	"wheats/internal/domain/model"
)

type CartLineRepository interface {
	ListActiveByCartID(ctx context.Context, cartID int64) ([]model.CartLine, error)
	LockByID(ctx context.Context, lineID int64) (model.CartLine, error)
	// 同じmenuのACTIVE明細（行ロック付き）
	FindActiveByCartAndMenu(ctx context.Context, cartID, menuID int64) (model.CartLine, error)
	Create(ctx context.Context, line model.CartLine) (model.CartLine, error)
	UpdateQuantity(ctx context.Context, lineID int64, qty int64) error
	UpdateStatus(ctx context.Context, lineID int64, status model.CartLineStatus) error
	// カート内のfromステータスの明細をまとめてtoへ
	UpdateStatusByCartID(ctx context.Context, cartID int64, from, to model.CartLineStatus) error
}
