package usecase

import (
	"context"
	"errors"
	"net/http"

	"wheats/internal/domain/cartstate"
	"wheats/internal/domain/model"
	repo "wheats/internal/repository"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CartUsecase はカートのライフサイクル（追加・数量変更・店舗切り替え）を扱う。
// 更新系はすべて1トランザクションで、最初にユーザー行をロックする。
type CartUsecase struct {
	tx         repo.TransactionManager
	log        *zap.Logger
	metrics    *lifecycleMetrics
	newBackOff func() backoff.BackOff
}

func NewCartUsecase(tx repo.TransactionManager, log *zap.Logger) *CartUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartUsecase{
		tx:         tx,
		log:        log,
		metrics:    newLifecycleMetrics(),
		newBackOff: defaultReadBackOff,
	}
}

type AddItemInput struct {
	StoreID  int64
	MenuID   int64
	Quantity int64
	// trueなら他店舗のACTIVEカートを退かして追加する
	Force bool
}

// AddItem はカートに追加（同じメニューは数量加算）。
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, in AddItemInput) (out CartView, err error) {
	ctx, span := tracer.Start(ctx, "CartUsecase.AddItem", trace.WithAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int64("store_id", in.StoreID),
		attribute.Int64("menu_id", in.MenuID),
		attribute.Bool("force", in.Force),
	))
	defer func() { u.finish(ctx, span, "add_item", err) }()

	if err := requireUser(userID); err != nil {
		return CartView{}, err
	}
	if in.StoreID <= 0 {
		return CartView{}, errBadRequest("invalid store_id")
	}
	if in.MenuID <= 0 {
		return CartView{}, errBadRequest("invalid menu_id")
	}
	if in.Quantity < 1 || in.Quantity > MaxLineQuantity {
		return CartView{}, errBadRequest("invalid quantity")
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := lockUser(ctx, r, userID); err != nil {
			return err
		}

		//メニュー・店舗チェック
		if err := checkOrderable(ctx, r, in.StoreID, in.MenuID); err != nil {
			return err
		}

		m := newCartMachine(r, u.log)

		cart, err := u.cartForStore(ctx, r, m, userID, in)
		if err != nil {
			return err
		}

		//同じメニューのACTIVE明細があれば加算
		line, err := r.CartLines().FindActiveByCartAndMenu(ctx, cart.ID, in.MenuID)
		switch {
		case err == nil:
			if line.Quantity+in.Quantity > MaxLineQuantity {
				return errBadRequest("quantity exceeds limit")
			}
			if err := r.CartLines().UpdateQuantity(ctx, line.ID, line.Quantity+in.Quantity); err != nil {
				return errInternal(err)
			}
		case errors.Is(err, repo.ErrNotFound):
			if _, err := r.CartLines().Create(ctx, model.CartLine{
				CartID:   cart.ID,
				MenuID:   in.MenuID,
				Quantity: in.Quantity,
				Status:   model.CartLineStatusActive,
			}); err != nil {
				return errInternal(err)
			}
		default:
			return errInternal(err)
		}

		out, err = buildCartView(ctx, r, cart)
		return err
	})
	if err != nil {
		return CartView{}, err
	}
	return out, nil
}

// 指定店舗のACTIVEカートを用意する。
// 他店舗のACTIVEがあれば、forceなしは409、forceありはABANDONEDへ退かす。
func (u *CartUsecase) cartForStore(ctx context.Context, r repo.TxRepos, m cartMachine, userID int64, in AddItemInput) (model.Cart, error) {
	active, err := r.Carts().FindActiveByUserID(ctx, userID)
	switch {
	case err == nil:
		if active.StoreID == in.StoreID {
			return active, nil
		}
		if !in.Force {
			view, err := buildCartView(ctx, r, active)
			if err != nil {
				return model.Cart{}, err
			}
			return model.Cart{}, errCartConflict(view)
		}
		if _, err := m.fire(ctx, active, cartstate.EventSwitchAway); err != nil {
			return model.Cart{}, err
		}
		u.log.Info("cart switched store",
			zap.Int64("user_id", userID),
			zap.Int64("cart_id", active.ID),
			zap.Int64("from_store_id", active.StoreID),
			zap.Int64("to_store_id", in.StoreID),
		)
	case !errors.Is(err, repo.ErrNotFound):
		return model.Cart{}, errInternal(err)
	}

	//同じ店舗のABANDONEDがあれば中身を消して再利用
	abandoned, err := r.Carts().FindByUserStoreStatus(ctx, userID, in.StoreID, model.CartStatusAbandoned)
	switch {
	case err == nil:
		return m.fire(ctx, abandoned, cartstate.EventResume)
	case errors.Is(err, repo.ErrNotFound):
		return m.fire(ctx, model.Cart{UserID: userID, StoreID: in.StoreID, Status: cartstate.None}, cartstate.EventOpen)
	default:
		return model.Cart{}, errInternal(err)
	}
}

// UpdateQuantity は数量を直接セットする。0以下は明細の取り消し。
func (u *CartUsecase) UpdateQuantity(ctx context.Context, userID int64, cartLineID int64, quantity int64) (out CartView, err error) {
	ctx, span := tracer.Start(ctx, "CartUsecase.UpdateQuantity", trace.WithAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int64("cart_line_id", cartLineID),
	))
	defer func() { u.finish(ctx, span, "update_quantity", err) }()

	if quantity > MaxLineQuantity {
		return CartView{}, errBadRequest("invalid quantity")
	}

	return u.editLine(ctx, userID, cartLineID, func(r repo.TxRepos, line model.CartLine) error {
		if quantity <= 0 {
			return r.CartLines().UpdateStatus(ctx, line.ID, model.CartLineStatusCancelled)
		}
		return r.CartLines().UpdateQuantity(ctx, line.ID, quantity)
	})
}

// RemoveItem は明細を取り消す（物理削除はしない）。
func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, cartLineID int64) (out CartView, err error) {
	ctx, span := tracer.Start(ctx, "CartUsecase.RemoveItem", trace.WithAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int64("cart_line_id", cartLineID),
	))
	defer func() { u.finish(ctx, span, "remove_item", err) }()

	return u.editLine(ctx, userID, cartLineID, func(r repo.TxRepos, line model.CartLine) error {
		return r.CartLines().UpdateStatus(ctx, line.ID, model.CartLineStatusCancelled)
	})
}

// 明細の存在・所有・カート状態を確認してからeditを呼ぶ
func (u *CartUsecase) editLine(ctx context.Context, userID, cartLineID int64, edit func(r repo.TxRepos, line model.CartLine) error) (CartView, error) {
	if err := requireUser(userID); err != nil {
		return CartView{}, err
	}
	if cartLineID <= 0 {
		return CartView{}, errBadRequest("invalid id")
	}

	var out CartView
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := lockUser(ctx, r, userID); err != nil {
			return err
		}

		line, err := r.CartLines().LockByID(ctx, cartLineID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("cart item")
		}
		if err != nil {
			return errInternal(err)
		}

		cart, err := r.Carts().FindByID(ctx, line.CartID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("cart")
		}
		if err != nil {
			return errInternal(err)
		}
		if cart.UserID != userID {
			return errForbidden()
		}
		if line.Status != model.CartLineStatusActive {
			return errNotFound("cart item")
		}
		if cart.Status != model.CartStatusActive {
			return errInvalidState("cart is not active")
		}

		if err := edit(r, line); err != nil {
			if _, ok := AsHTTPError(err); ok {
				return err
			}
			return errInternal(err)
		}

		out, err = buildCartView(ctx, r, cart)
		return err
	})
	if err != nil {
		return CartView{}, err
	}
	return out, nil
}

// GetCart はACTIVEカートを返す。無ければnil。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (*CartView, error) {
	ctx, span := tracer.Start(ctx, "CartUsecase.GetCart", trace.WithAttributes(attribute.Int64("user_id", userID)))
	defer span.End()

	if err := requireUser(userID); err != nil {
		return nil, err
	}

	var out *CartView
	err := retryRead(ctx, u.newBackOff, func() error {
		out = nil
		return u.tx.ReadOnly(ctx, func(r repo.TxRepos) error {
			cart, err := r.Carts().FindActiveByUserID(ctx, userID)
			if errors.Is(err, repo.ErrNotFound) {
				return nil
			}
			if err != nil {
				return errInternal(err)
			}

			view, err := buildCartView(ctx, r, cart)
			if err != nil {
				return err
			}
			out = &view
			return nil
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return out, nil
}

// CancelCart はACTIVEカートを明細ごとCANCELLEDにする。
func (u *CartUsecase) CancelCart(ctx context.Context, userID int64) (err error) {
	ctx, span := tracer.Start(ctx, "CartUsecase.CancelCart", trace.WithAttributes(attribute.Int64("user_id", userID)))
	defer func() { u.finish(ctx, span, "cancel_cart", err) }()

	if err := requireUser(userID); err != nil {
		return err
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := lockUser(ctx, r, userID); err != nil {
			return err
		}

		cart, err := r.Carts().FindActiveByUserID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("cart")
		}
		if err != nil {
			return errInternal(err)
		}

		_, err = newCartMachine(r, u.log).fire(ctx, cart, cartstate.EventCancel)
		return err
	})
}

func (u *CartUsecase) finish(ctx context.Context, span trace.Span, op string, err error) {
	u.metrics.cartOp(ctx, op, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if he, ok := AsHTTPError(err); !ok || he.Status >= 500 {
			u.log.Error("cart operation failed", zap.String("op", op), zap.Error(err))
		}
	}
	span.End()
}

func requireUser(userID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return nil
}

// 同じユーザーの更新系はここで直列になる
func lockUser(ctx context.Context, r repo.TxRepos, userID int64) error {
	err := r.Users().LockByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return errNotFound("user")
	}
	if err != nil {
		return errInternal(err)
	}
	return nil
}

// メニューが店舗に属していて注文可能か
func checkOrderable(ctx context.Context, r repo.TxRepos, storeID, menuID int64) error {
	menu, err := r.Catalog().ResolveMenu(ctx, menuID)
	if errors.Is(err, repo.ErrNotFound) {
		return errBadRequest("invalid menu")
	}
	if err != nil {
		return errInternal(err)
	}
	if menu.StoreID != storeID {
		return errBadRequest("invalid menu")
	}
	if !menu.IsAvailable {
		return errBadRequest("menu unavailable")
	}

	store, err := r.Catalog().ResolveStore(ctx, storeID)
	if errors.Is(err, repo.ErrNotFound) {
		return errBadRequest("invalid store")
	}
	if err != nil {
		return errInternal(err)
	}
	if !store.IsOpen {
		return errBadRequest("store closed")
	}
	return nil
}
