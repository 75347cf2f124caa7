package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wheats/internal/domain/cartstate"
	"wheats/internal/domain/model"
	repo "wheats/internal/repository"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const myOrdersLimit = 50

type OrderUsecase struct {
	tx         repo.TransactionManager
	publisher  EventPublisher
	numbers    OrderNumberGenerator
	clock      Clock
	log        *zap.Logger
	metrics    *lifecycleMetrics
	newBackOff func() backoff.BackOff
}

// publisherはnilでもよい（イベントを送らない）
func NewOrderUsecase(tx repo.TransactionManager, publisher EventPublisher, numbers OrderNumberGenerator, clock Clock, log *zap.Logger) *OrderUsecase {
	if numbers == nil {
		numbers = UUIDOrderNumbers{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderUsecase{
		tx:         tx,
		publisher:  publisher,
		numbers:    numbers,
		clock:      clock,
		log:        log,
		metrics:    newLifecycleMetrics(),
		newBackOff: defaultReadBackOff,
	}
}

type OrderLineOutput struct {
	MenuID    int64  `json:"menu_id"`
	MenuName  string `json:"menu_name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
	LinePrice int64  `json:"line_price"`
}

// 注文詳細（レシート）。金額はすべて注文時点で確定した値。
type OrderDetail struct {
	OrderID     int64             `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	Status      string            `json:"status"`
	StoreID     int64             `json:"store_id"`
	StoreName   string            `json:"store_name"`
	UserName    string            `json:"user_name"`
	UserEmail   string            `json:"user_email"`
	Items       []OrderLineOutput `json:"items"`
	OrderAmount int64             `json:"order_amount"`
	DeliveryFee int64             `json:"delivery_fee"`
	TotalPrice  int64             `json:"total_price"`
	CreatedAt   time.Time         `json:"created_at"`
	PaidAt      *time.Time        `json:"paid_at"`
}

type OrderSummary struct {
	OrderID     int64     `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	StoreName   string    `json:"store_name"`
	ItemSummary string    `json:"item_summary"`
	TotalPrice  int64     `json:"total_price"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Checkout はカートを支払い済みの注文に変える。
// 残高引き落とし・注文作成・カートのORDERED化は1トランザクションで、途中で失敗したら全部戻る。
func (u *OrderUsecase) Checkout(ctx context.Context, userID int64, cartID int64) (out OrderDetail, err error) {
	ctx, span := tracer.Start(ctx, "OrderUsecase.Checkout", trace.WithAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int64("cart_id", cartID),
	))
	defer func() {
		u.metrics.checkout(ctx, out.TotalPrice, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := requireUser(userID); err != nil {
		return OrderDetail{}, err
	}
	if cartID <= 0 {
		return OrderDetail{}, errBadRequest("invalid cart_id")
	}

	var order model.Order

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := lockUser(ctx, r, userID); err != nil {
			return err
		}

		//カートをロックして状態確認
		cart, err := r.Carts().LockByID(ctx, cartID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("cart")
		}
		if err != nil {
			return errInternal(err)
		}
		if cart.UserID != userID {
			return errForbidden()
		}
		if cart.Status != model.CartStatusActive {
			return errInvalidState("cart is not active")
		}

		lines, err := r.CartLines().ListActiveByCartID(ctx, cart.ID)
		if err != nil {
			return errInternal(err)
		}
		if len(lines) == 0 {
			return errEmptyCart()
		}

		store, err := r.Catalog().ResolveStore(ctx, cart.StoreID)
		if errors.Is(err, repo.ErrNotFound) {
			return errInvalidState("store no longer exists")
		}
		if err != nil {
			return errInternal(err)
		}
		if !store.IsOpen {
			return errInvalidState("store closed")
		}

		//現在価格で確定（スナップショット）
		orderLines := make([]model.OrderLine, 0, len(lines))
		var amount int64 = 0
		for _, l := range lines {
			m, err := r.Catalog().ResolveMenu(ctx, l.MenuID)
			if errors.Is(err, repo.ErrNotFound) {
				return errInvalidState(fmt.Sprintf("menu %d no longer exists", l.MenuID))
			}
			if err != nil {
				return errInternal(err)
			}
			// 追加後に移動・販売停止されたメニューは請求しない
			if m.StoreID != cart.StoreID || !m.IsAvailable {
				return errInvalidState(fmt.Sprintf("menu %d is no longer orderable", l.MenuID))
			}
			if l.Quantity > MaxLineQuantity {
				return errInvalidState("invalid quantity")
			}

			lp, err := linePrice(m.Price, l.Quantity)
			if err != nil {
				return errInvalidState("order total out of range")
			}
			if amount, err = addAmount(amount, lp); err != nil {
				return errInvalidState("order total out of range")
			}

			orderLines = append(orderLines, model.OrderLine{
				MenuID:           l.MenuID,
				MenuNameSnapshot: m.Name,
				UnitPrice:        m.Price,
				Quantity:         l.Quantity,
			})
		}
		total, err := addAmount(amount, store.DeliveryFee)
		if err != nil {
			return errInvalidState("order total out of range")
		}

		now := u.clock.Now()
		number := u.numbers.Next(now)

		//残高引き落とし
		if balance, err := r.Ledger().Debit(ctx, userID, total, "order "+number); err != nil {
			if errors.Is(err, repo.ErrInsufficientBalance) {
				return errInsufficientFunds(total, balance)
			}
			return errInternal(err)
		}

		paidAt := now
		order, err = r.Orders().Create(ctx, model.Order{
			OrderNumber: number,
			UserID:      userID,
			StoreID:     cart.StoreID,
			CartID:      cart.ID,
			Status:      model.OrderStatusPaid,
			OrderAmount: amount,
			DeliveryFee: store.DeliveryFee,
			TotalPrice:  total,
			CreatedAt:   now,
			PaidAt:      &paidAt,
		})
		if err != nil {
			return errInternal(err)
		}

		if err := r.OrderLines().CreateBulk(ctx, order.ID, orderLines); err != nil {
			return errInternal(err)
		}

		//カートと明細をORDEREDへ
		if _, err := newCartMachine(r, u.log).fire(ctx, cart, cartstate.EventCheckout); err != nil {
			return err
		}

		out = buildOrderDetail(ctx, r, order, orderLines)
		return nil
	})
	if err != nil {
		u.log.Info("checkout failed",
			zap.Int64("user_id", userID),
			zap.Int64("cart_id", cartID),
			zap.String("result", resultOf(err)),
			zap.Error(err),
		)
		return OrderDetail{}, err
	}

	u.log.Info("order paid",
		zap.Int64("user_id", userID),
		zap.Int64("cart_id", cartID),
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Int64("total_price", order.TotalPrice),
	)
	u.publishPaid(ctx, order)

	return out, nil
}

// コミット後に送る。失敗しても注文は成立しているのでログだけ。
func (u *OrderUsecase) publishPaid(ctx context.Context, o model.Order) {
	if u.publisher == nil {
		return
	}

	if err := u.publisher.PublishOrderPaid(ctx, model.NewOrderPaidEvent(o)); err != nil {
		u.log.Warn("publish order.paid failed",
			zap.String("order_number", o.OrderNumber),
			zap.Error(err),
		)
	}
}

// GetOrderDetail は本人の注文だけ返す。
func (u *OrderUsecase) GetOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderDetail, error) {
	ctx, span := tracer.Start(ctx, "OrderUsecase.GetOrderDetail", trace.WithAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int64("order_id", orderID),
	))
	defer span.End()

	if err := requireUser(userID); err != nil {
		return OrderDetail{}, err
	}
	if orderID <= 0 {
		return OrderDetail{}, errBadRequest("invalid id")
	}

	var out OrderDetail
	err := retryRead(ctx, u.newBackOff, func() error {
		return u.tx.ReadOnly(ctx, func(r repo.TxRepos) error {
			o, err := r.Orders().FindByID(ctx, orderID)
			if errors.Is(err, repo.ErrNotFound) {
				return errNotFound("order")
			}
			if err != nil {
				return errInternal(err)
			}
			if o.UserID != userID {
				return errForbidden()
			}

			lines, err := r.OrderLines().ListByOrderID(ctx, o.ID)
			if err != nil {
				return errInternal(err)
			}

			out = buildOrderDetail(ctx, r, o, lines)
			return nil
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return OrderDetail{}, err
	}
	return out, nil
}

// ListMyOrders は新しい順に最大50件。
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderSummary, error) {
	ctx, span := tracer.Start(ctx, "OrderUsecase.ListMyOrders", trace.WithAttributes(attribute.Int64("user_id", userID)))
	defer span.End()

	if err := requireUser(userID); err != nil {
		return []OrderSummary{}, err
	}

	var outs []OrderSummary
	err := retryRead(ctx, u.newBackOff, func() error {
		return u.tx.ReadOnly(ctx, func(r repo.TxRepos) error {
			orders, err := r.Orders().ListByUserID(ctx, userID, myOrdersLimit)
			if err != nil {
				return errInternal(err)
			}

			outs = make([]OrderSummary, 0, len(orders))
			for _, o := range orders {
				lines, err := r.OrderLines().ListByOrderID(ctx, o.ID)
				if err != nil {
					return errInternal(err)
				}

				outs = append(outs, OrderSummary{
					OrderID:     o.ID,
					OrderNumber: o.OrderNumber,
					StoreName:   storeNameOf(ctx, r, o.StoreID),
					ItemSummary: itemSummary(ctx, r, lines),
					TotalPrice:  o.TotalPrice,
					Status:      string(o.Status),
					CreatedAt:   o.CreatedAt,
				})
			}
			return nil
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return []OrderSummary{}, err
	}
	return outs, nil
}

// 表示用の名前は取れる範囲で埋める（店舗・メニュー・ユーザーが消えていても失敗しない）
func buildOrderDetail(ctx context.Context, r repo.TxRepos, o model.Order, lines []model.OrderLine) OrderDetail {
	items := make([]OrderLineOutput, 0, len(lines))
	for _, l := range lines {
		items = append(items, OrderLineOutput{
			MenuID:    l.MenuID,
			MenuName:  menuNameOf(ctx, r, l),
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			LinePrice: l.LinePrice(),
		})
	}

	out := OrderDetail{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Status:      string(o.Status),
		StoreID:     o.StoreID,
		StoreName:   storeNameOf(ctx, r, o.StoreID),
		Items:       items,
		OrderAmount: o.OrderAmount,
		DeliveryFee: o.DeliveryFee,
		TotalPrice:  o.TotalPrice,
		CreatedAt:   o.CreatedAt,
		PaidAt:      o.PaidAt,
	}

	if user, err := r.Users().FindByID(ctx, o.UserID); err == nil {
		out.UserName = user.Name
		out.UserEmail = user.Email
	}
	return out
}

func storeNameOf(ctx context.Context, r repo.TxRepos, storeID int64) string {
	s, err := r.Catalog().ResolveStore(ctx, storeID)
	if err != nil {
		return deletedStoreName
	}
	return s.Name
}

// 現在のメニュー名 -> スナップショット -> プレースホルダの順
func menuNameOf(ctx context.Context, r repo.TxRepos, l model.OrderLine) string {
	if m, err := r.Catalog().ResolveMenu(ctx, l.MenuID); err == nil {
		return m.Name
	}
	if l.MenuNameSnapshot != "" {
		return l.MenuNameSnapshot
	}
	return deletedMenuName
}

// "唐揚げ弁当" / "唐揚げ弁当 and 2 more"
func itemSummary(ctx context.Context, r repo.TxRepos, lines []model.OrderLine) string {
	if len(lines) == 0 {
		return ""
	}
	first := menuNameOf(ctx, r, lines[0])
	if len(lines) == 1 {
		return first
	}
	return fmt.Sprintf("%s and %d more", first, len(lines)-1)
}
