package usecase

import (
	"context"
	"errors"

	"wheats/internal/domain/cartstate"
	"wheats/internal/domain/model"
	repo "wheats/internal/repository"

	"go.uber.org/zap"
)

// cartstate.Transition をDBへ反映する。
// 順番は Before -> ステータス書き込み -> After で固定。
type cartMachine struct {
	r   repo.TxRepos
	log *zap.Logger
}

func newCartMachine(r repo.TxRepos, log *zap.Logger) cartMachine {
	return cartMachine{r: r, log: log}
}

// cart.Status が cartstate.None のときは新規作成になる
func (m cartMachine) fire(ctx context.Context, cart model.Cart, ev cartstate.Event) (model.Cart, error) {
	tr, err := cartstate.Next(cart.Status, ev)
	if err != nil {
		return cart, errInvalidState(err.Error())
	}

	for _, eff := range tr.Before {
		if err := m.apply(ctx, cart, eff); err != nil {
			return cart, err
		}
	}

	if tr.From == cartstate.None {
		cart.Status = tr.To
		created, err := m.r.Carts().Create(ctx, cart)
		if err != nil {
			return cart, errInternal(err)
		}
		cart = created
	} else {
		if err := m.r.Carts().UpdateStatus(ctx, cart.ID, tr.To); err != nil {
			return cart, errInternal(err)
		}
		cart.Status = tr.To
	}

	for _, eff := range tr.After {
		if err := m.apply(ctx, cart, eff); err != nil {
			return cart, err
		}
	}

	m.log.Debug("cart transition",
		zap.Int64("cart_id", cart.ID),
		zap.Int64("user_id", cart.UserID),
		zap.String("event", string(ev)),
		zap.String("from", string(tr.From)),
		zap.String("to", string(tr.To)),
	)
	return cart, nil
}

func (m cartMachine) apply(ctx context.Context, cart model.Cart, eff cartstate.Effect) error {
	switch eff {
	case cartstate.EffectClearLines:
		if cart.ID == 0 {
			return nil
		}
		if err := m.r.CartLines().UpdateStatusByCartID(ctx, cart.ID, model.CartLineStatusActive, model.CartLineStatusCancelled); err != nil {
			return errInternal(err)
		}
		return nil

	case cartstate.EffectOrderLines:
		if err := m.r.CartLines().UpdateStatusByCartID(ctx, cart.ID, model.CartLineStatusActive, model.CartLineStatusOrdered); err != nil {
			return errInternal(err)
		}
		return nil

	case cartstate.EffectRequireNoActive:
		active, err := m.r.Carts().FindActiveByUserID(ctx, cart.UserID)
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		if err != nil {
			return errInternal(err)
		}
		if active.ID != cart.ID {
			return errInvalidState("another cart is already active")
		}
		return nil

	case cartstate.EffectVacateAbandonedSlot:
		return m.vacateAbandonedSlot(ctx, cart)
	}
	return nil
}

// 同じ(user, store)に残っているABANDONEDカートを先に退かす。
// 注文に使われていればORDERED、そうでなければ明細を消してCANCELLED。
func (m cartMachine) vacateAbandonedSlot(ctx context.Context, cart model.Cart) error {
	old, err := m.r.Carts().FindByUserStoreStatus(ctx, cart.UserID, cart.StoreID, model.CartStatusAbandoned)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return errInternal(err)
	}

	referenced, err := m.r.Orders().ExistsByCartID(ctx, old.ID)
	if err != nil {
		return errInternal(err)
	}

	_, err = m.fire(ctx, old, cartstate.ReconcileEvent(referenced))
	return err
}
