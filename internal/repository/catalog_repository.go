package repository

import (
	"context"

	"wheats/internal/domain/model"
)

// カタログ（店舗・メニュー）の読み取り専用窓口。
type CatalogRepository interface {
	ResolveMenu(ctx context.Context, menuID int64) (model.Menu, error)
	ResolveStore(ctx context.Context, storeID int64) (model.Store, error)
}
