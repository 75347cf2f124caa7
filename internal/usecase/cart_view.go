package usecase

import (
	"context"
	"errors"

	"wheats/internal/domain/model"
	repo "wheats/internal/repository"
)

const (
	deletedStoreName = "(deleted store)"
	deletedMenuName  = "(deleted menu)"
)

type CartLineView struct {
	CartItemID int64  `json:"cart_item_id"`
	MenuID     int64  `json:"menu_id"`
	MenuName   string `json:"menu_name"`
	Quantity   int64  `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
	LinePrice  int64  `json:"line_price"`
}

// 価格はカートに保存せず、表示のたびにカタログの現在価格で出す。
type CartView struct {
	CartID     int64          `json:"cart_id"`
	StoreID    int64          `json:"store_id"`
	StoreName  string         `json:"store_name"`
	Items      []CartLineView `json:"items"`
	TotalPrice int64          `json:"total_price"`
}

func buildCartView(ctx context.Context, r repo.TxRepos, cart model.Cart) (CartView, error) {
	lines, err := r.CartLines().ListActiveByCartID(ctx, cart.ID)
	if err != nil {
		return CartView{}, errInternal(err)
	}

	storeName := deletedStoreName
	store, err := r.Catalog().ResolveStore(ctx, cart.StoreID)
	switch {
	case err == nil:
		storeName = store.Name
	case !errors.Is(err, repo.ErrNotFound):
		return CartView{}, errInternal(err)
	}

	items := make([]CartLineView, 0, len(lines))
	var total int64 = 0

	for _, l := range lines {
		m, err := r.Catalog().ResolveMenu(ctx, l.MenuID)
		if errors.Is(err, repo.ErrNotFound) {
			// メニューが消えた明細は表示しない
			continue
		}
		if err != nil {
			return CartView{}, errInternal(err)
		}

		lp, err := linePrice(m.Price, l.Quantity)
		if err != nil {
			return CartView{}, errInvalidState("cart total out of range")
		}
		items = append(items, CartLineView{
			CartItemID: l.ID,
			MenuID:     l.MenuID,
			MenuName:   m.Name,
			Quantity:   l.Quantity,
			UnitPrice:  m.Price,
			LinePrice:  lp,
		})
		if total, err = addAmount(total, lp); err != nil {
			return CartView{}, errInvalidState("cart total out of range")
		}
	}

	return CartView{
		CartID:     cart.ID,
		StoreID:    cart.StoreID,
		StoreName:  storeName,
		Items:      items,
		TotalPrice: total,
	}, nil
}
