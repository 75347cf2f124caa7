package repository

import "context"

// ポイント残高の台帳。
type LedgerRepository interface {
	// 残高が足りるときだけ減算し、減算後の残高を返す。
	// 足りないときは ErrInsufficientBalance と現在の残高を返す。
	Debit(ctx context.Context, userID int64, amount int64, note string) (int64, error)
}
