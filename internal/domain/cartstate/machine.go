// Package cartstate はカートの状態遷移を副作用なしで決める。
//
// 実際の書き込みは usecase 側が Transition の順序どおりに行う。
// Before は必ずステータス書き込みより前に終わらせること
// （(user_id, store_id, status) の一意制約に当たらないようにするため）。
package cartstate

import (
	"errors"
	"fmt"

	"wheats/internal/domain/model"
)

// カートが存在しない状態（新規作成前）。
const None model.CartStatus = ""

type Event string

const (
	EventOpen                  Event = "OPEN"
	EventResume                Event = "RESUME"
	EventSwitchAway            Event = "SWITCH_AWAY"
	EventReconcileReferenced   Event = "RECONCILE_REFERENCED"
	EventReconcileUnreferenced Event = "RECONCILE_UNREFERENCED"
	EventCheckout              Event = "CHECKOUT"
	EventCancel                Event = "CANCEL"
)

type Effect string

const (
	// ACTIVE明細をすべてCANCELLEDにする
	EffectClearLines Effect = "CLEAR_LINES"
	// ACTIVE明細をすべてORDEREDにする
	EffectOrderLines Effect = "ORDER_LINES"
	// 同じユーザーに他のACTIVEカートが無いこと
	EffectRequireNoActive Effect = "REQUIRE_NO_ACTIVE"
	// 同じ(user, store)の既存ABANDONEDカートを先に片付ける
	EffectVacateAbandonedSlot Effect = "VACATE_ABANDONED_SLOT"
)

var (
	ErrTerminal          = errors.New("cart is in a terminal state")
	ErrInvalidTransition = errors.New("invalid cart transition")
)

type Transition struct {
	From   model.CartStatus
	To     model.CartStatus
	Event  Event
	Before []Effect
	After  []Effect
}

type key struct {
	from  model.CartStatus
	event Event
}

type rule struct {
	to     model.CartStatus
	before []Effect
	after  []Effect
}

var rules = map[key]rule{
	{None, EventOpen}: {
		to:     model.CartStatusActive,
		before: []Effect{EffectRequireNoActive},
	},
	{model.CartStatusAbandoned, EventResume}: {
		to:     model.CartStatusActive,
		before: []Effect{EffectClearLines, EffectRequireNoActive},
	},
	{model.CartStatusActive, EventSwitchAway}: {
		to:     model.CartStatusAbandoned,
		before: []Effect{EffectVacateAbandonedSlot},
	},
	{model.CartStatusAbandoned, EventReconcileReferenced}: {
		to:    model.CartStatusOrdered,
		after: []Effect{EffectOrderLines},
	},
	{model.CartStatusAbandoned, EventReconcileUnreferenced}: {
		to:     model.CartStatusCancelled,
		before: []Effect{EffectClearLines},
	},
	{model.CartStatusActive, EventCheckout}: {
		to:    model.CartStatusOrdered,
		after: []Effect{EffectOrderLines},
	},
	{model.CartStatusActive, EventCancel}: {
		to:     model.CartStatusCancelled,
		before: []Effect{EffectClearLines},
	},
	{model.CartStatusAbandoned, EventCancel}: {
		to:     model.CartStatusCancelled,
		before: []Effect{EffectClearLines},
	},
}

// Next は (現在の状態, イベント) から遷移を返す。
func Next(from model.CartStatus, ev Event) (Transition, error) {
	if IsTerminal(from) {
		return Transition{}, fmt.Errorf("%w: %s on %s", ErrTerminal, ev, from)
	}

	r, ok := rules[key{from: from, event: ev}]
	if !ok {
		return Transition{}, fmt.Errorf("%w: %s on %q", ErrInvalidTransition, ev, from)
	}

	return Transition{
		From:   from,
		To:     r.to,
		Event:  ev,
		Before: append([]Effect(nil), r.before...),
		After:  append([]Effect(nil), r.after...),
	}, nil
}

// ReconcileEvent は既存ABANDONEDカートを退かすときのイベントを選ぶ。
func ReconcileEvent(referencedByOrder bool) Event {
	if referencedByOrder {
		return EventReconcileReferenced
	}
	return EventReconcileUnreferenced
}

// ACTIVE/ABANDONEDは一意制約の枠を取り合う状態。
func IsAlive(s model.CartStatus) bool {
	return s == model.CartStatusActive || s == model.CartStatusAbandoned
}

func IsTerminal(s model.CartStatus) bool {
	return s == model.CartStatusOrdered
}
